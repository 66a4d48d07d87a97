package mirror_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/logging"
	"github.com/agentstation/designlib/pkg/mirror"
)

const ledgerFile = "file_metadata.csv"

func newSyncer(t *testing.T, fake http.Handler, opts ...mirror.SyncerOption) *mirror.Syncer {
	t.Helper()
	opts = append([]mirror.SyncerOption{mirror.WithLogger(logging.NewNopLogger())}, opts...)
	return mirror.NewSyncer(newRemote(t, fake, testToken), ledgerFile, opts...)
}

func TestPushCreatesThenUpdates(t *testing.T) {
	fake := newFakeGitHub()
	s := newSyncer(t, fake)
	ctx := context.Background()

	out, err := s.Push(ctx, []byte("v1"))
	require.NoError(t, err)
	assert.Equal(t, mirror.Created, out.Action)
	assert.Equal(t, 1, out.Attempts)

	out2, err := s.Push(ctx, []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, mirror.Updated, out2.Action)
	assert.NotEqual(t, out.SHA, out2.SHA)

	rf, ok := fake.get(ledgerFile)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), rf.content)
}

func TestPushUnchangedSkipsWrite(t *testing.T) {
	fake := newFakeGitHub()
	sha := fake.set(ledgerFile, []byte("same"))
	s := newSyncer(t, fake)

	out, err := s.Push(context.Background(), []byte("same"))
	require.NoError(t, err)
	assert.Equal(t, mirror.Unchanged, out.Action)
	assert.Equal(t, sha, out.SHA)
	assert.Zero(t, fake.puts)
}

func TestPushRetriesOnceAfterConflict(t *testing.T) {
	fake := newFakeGitHub()
	fake.set(ledgerFile, []byte("base"))

	// another writer lands between our first fetch and put
	raced := false
	fake.beforePut = func(path string) {
		if !raced {
			raced = true
			fake.set(path, []byte("theirs"))
		}
	}
	s := newSyncer(t, fake)

	out, err := s.Push(context.Background(), []byte("ours"))
	require.NoError(t, err)
	assert.Equal(t, mirror.Updated, out.Action)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 2, fake.gets)

	fake.mu.Lock()
	assert.Len(t, fake.files, 1, "no duplicate remote objects")
	fake.mu.Unlock()
	rf, _ := fake.get(ledgerFile)
	assert.Equal(t, []byte("ours"), rf.content)
	assert.Equal(t, out.SHA, rf.sha)
}

func TestPushCreateRaceRetriesAsUpdate(t *testing.T) {
	fake := newFakeGitHub()
	raced := false
	fake.beforePut = func(path string) {
		if !raced {
			raced = true
			fake.set(path, []byte("theirs"))
		}
	}
	s := newSyncer(t, fake)

	out, err := s.Push(context.Background(), []byte("ours"))
	require.NoError(t, err)
	assert.Equal(t, mirror.Updated, out.Action)
	assert.Equal(t, 2, out.Attempts)
}

func TestPushGivesUpAfterSecondConflict(t *testing.T) {
	fake := newFakeGitHub()
	fake.set(ledgerFile, []byte("base"))
	fake.beforePut = func(path string) { fake.set(path, []byte("always newer")) }
	s := newSyncer(t, fake)

	out, err := s.Push(context.Background(), []byte("ours"))
	require.Error(t, err)
	assert.Equal(t, 2, out.Attempts)
	assert.True(t, errors.IsConflict(err))

	var syncErr *errors.RemoteSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, 2, syncErr.Attempts)
	assert.Equal(t, ledgerFile, syncErr.Path)
}

func TestPushTimesOut(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-block:
		}
	})
	s := newSyncer(t, slow, mirror.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := s.Push(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRemoteUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPushWithoutTokenIsAuthError(t *testing.T) {
	fake := newFakeGitHub()
	s := mirror.NewSyncer(newRemote(t, fake, ""), ledgerFile, mirror.WithLogger(logging.NewNopLogger()))

	_, err := s.Push(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, errors.ErrRemoteAuth)
	assert.Zero(t, fake.gets)
}

func TestPull(t *testing.T) {
	fake := newFakeGitHub()
	s := newSyncer(t, fake)

	_, err := s.Pull(context.Background())
	assert.True(t, errors.IsNotFound(err))

	status, err := s.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Exists)

	sha := fake.set(ledgerFile, []byte("remote ledger"))
	snap, err := s.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sha, snap.SHA)
	assert.Equal(t, []byte("remote ledger"), snap.Content)
}
