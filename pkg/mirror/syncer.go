package mirror

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/logging"
)

// Syncer keeps one remote path in step with local content.
type Syncer struct {
	remote  Remote
	path    string
	timeout time.Duration
	retries int
	logger  *zerolog.Logger
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithTimeout bounds each Push or Pull, retries included.
func WithTimeout(d time.Duration) SyncerOption {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the syncer's logger.
func WithLogger(logger *zerolog.Logger) SyncerOption {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSyncer mirrors content to path on remote.
func NewSyncer(remote Remote, path string, opts ...SyncerOption) *Syncer {
	if path == "" {
		path = constants.DefaultMirrorPath
	}
	s := &Syncer{
		remote:  remote,
		path:    path,
		timeout: constants.RemoteTimeout,
		retries: constants.MaxConflictRetries,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remote returns the underlying remote.
func (s *Syncer) Remote() Remote { return s.remote }

// Path returns the mirrored remote path.
func (s *Syncer) Path() string { return s.path }

// Push makes the remote file equal content. It fetches the current
// snapshot, skips the write when nothing changed, and otherwise creates or
// updates with the fetched sha. A conflicting write is retried once from a
// fresh fetch; any failure is returned as an *errors.RemoteSyncError.
func (s *Syncer) Push(ctx context.Context, content []byte) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := s.logger.With().Str("remote", s.remote.Name()).Str("path", s.path).Logger()

	for attempt := 1; ; attempt++ {
		snap, err := s.remote.Fetch(ctx, s.path)
		if err != nil {
			return Outcome{Attempts: attempt}, errors.NewRemoteSyncError(s.path, attempt, err)
		}

		if snap.Exists && bytes.Equal(snap.Content, content) {
			log.Debug().Str("sha", snap.SHA).Msg("remote already up to date")
			return Outcome{Action: Unchanged, SHA: snap.SHA, Attempts: attempt}, nil
		}

		action := Created
		if snap.Exists {
			action = Updated
		}

		sha, err := s.remote.Put(ctx, s.path, content, snap.SHA)
		if err == nil {
			log.Info().Str("sha", sha).Str("action", string(action)).Int("attempts", attempt).Msg("pushed ledger")
			return Outcome{Action: action, SHA: sha, Attempts: attempt}, nil
		}

		if errors.IsConflict(err) && attempt <= s.retries {
			log.Warn().Err(err).Int("attempt", attempt).Msg("remote changed during push, retrying")
			continue
		}
		return Outcome{Attempts: attempt}, errors.NewRemoteSyncError(s.path, attempt, err)
	}
}

// Pull fetches the remote copy. A missing remote file is a NotFoundError.
func (s *Syncer) Pull(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.remote.Fetch(ctx, s.path)
	if err != nil {
		return Snapshot{}, errors.NewRemoteSyncError(s.path, 1, err)
	}
	if !snap.Exists {
		return Snapshot{}, errors.NewNotFoundError("remote file", s.path)
	}
	return snap, nil
}

// Status fetches the remote snapshot without requiring it to exist.
func (s *Syncer) Status(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.remote.Fetch(ctx, s.path)
	if err != nil {
		return Snapshot{}, errors.NewRemoteSyncError(s.path, 1, err)
	}
	return snap, nil
}
