package store

import (
	"bytes"
	"context"
	"sort"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/agentstation/designlib/pkg/errors"
)

// JetStream keeps each key as one object in a NATS JetStream object store
// bucket. Call Init before use.
type JetStream struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	bucket string
	store  jetstream.ObjectStore
}

var (
	_ Store  = (*JetStream)(nil)
	_ Sizer  = (*JetStream)(nil)
	_ Closer = (*JetStream)(nil)
)

// NewJetStream connects to the NATS server at url.
func NewJetStream(url, bucket string) (*JetStream, error) {
	if bucket == "" {
		return nil, errors.NewConfigError("jetstream", "bucket is required", nil)
	}
	conn, err := nats.Connect(url, nats.Name("designlib"))
	if err != nil {
		return nil, errors.NewUnavailableError("nats", "connect", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.NewUnavailableError("nats", "jetstream", err)
	}
	return &JetStream{conn: conn, js: js, bucket: bucket}, nil
}

// NewJetStreamWithObjectStore wraps an already opened bucket.
func NewJetStreamWithObjectStore(obs jetstream.ObjectStore) *JetStream {
	return &JetStream{store: obs}
}

// Init opens the bucket, creating it on first use.
func (s *JetStream) Init(ctx context.Context) error {
	if s.store != nil {
		return nil
	}
	obs, err := s.js.ObjectStore(ctx, s.bucket)
	if err == nil {
		s.store = obs
		return nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return errors.WrapResource("open", "bucket", s.bucket, err)
	}
	obs, err = s.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      s.bucket,
		Description: "designlib uploaded files",
	})
	if err != nil {
		return errors.WrapResource("create", "bucket", s.bucket, err)
	}
	s.store = obs
	return nil
}

// Put stores data under key.
func (s *JetStream) Put(ctx context.Context, key string, data []byte) error {
	if _, err := s.store.Put(ctx, jetstream.ObjectMeta{Name: key}, bytes.NewReader(data)); err != nil {
		return errors.WrapIO("write", key, err)
	}
	return nil
}

// Get reads key.
func (s *JetStream) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.store.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, errors.NewNotFoundError("file", key)
		}
		return nil, errors.WrapIO("read", key, err)
	}
	return data, nil
}

// Remove deletes key; a missing key is ignored.
func (s *JetStream) Remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrObjectNotFound) {
		return errors.WrapIO("delete", key, err)
	}
	return nil
}

// List returns the names of the live objects in the bucket.
func (s *JetStream) List(ctx context.Context) ([]string, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoObjectsFound) {
			return []string{}, nil
		}
		return nil, errors.WrapIO("list", s.bucket, err)
	}
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Deleted {
			continue
		}
		keys = append(keys, info.Name)
	}
	sort.Strings(keys)
	return keys, nil
}

// Size reads the object's metadata.
func (s *JetStream) Size(ctx context.Context, key string) (int64, error) {
	info, err := s.store.GetInfo(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return 0, errors.NewNotFoundError("file", key)
		}
		return 0, errors.WrapIO("stat", key, err)
	}
	return int64(info.Size), nil
}

// Connected reports whether the NATS connection is up.
func (s *JetStream) Connected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

// Close closes the NATS connection.
func (s *JetStream) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
