package mirror

import (
	"context"
	"strconv"
	"sync"

	"github.com/agentstation/designlib/pkg/errors"
)

// Memory is an in-process Remote. Each write bumps a revision counter used
// as the sha, so stale writes conflict the way they do on GitHub.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	shas  map[string]string
	rev   int
	fail  error
}

var _ Remote = (*Memory)(nil)

// NewMemory returns an empty Memory remote.
func NewMemory() *Memory {
	return &Memory{files: map[string][]byte{}, shas: map[string]string{}}
}

// Name implements Remote.
func (m *Memory) Name() string { return "memory" }

// Fetch implements Remote.
func (m *Memory) Fetch(_ context.Context, path string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return Snapshot{}, m.fail
	}
	data, ok := m.files[path]
	if !ok {
		return Snapshot{}, nil
	}
	return Snapshot{SHA: m.shas[path], Content: append([]byte(nil), data...), Exists: true}, nil
}

// Put implements Remote.
func (m *Memory) Put(_ context.Context, path string, content []byte, sha string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	if m.shas[path] != sha {
		return "", errors.NewConflictError(path, sha, 409)
	}
	m.rev++
	m.files[path] = append([]byte(nil), content...)
	m.shas[path] = "rev-" + strconv.Itoa(m.rev)
	return m.shas[path], nil
}

// Content returns the stored bytes of path, nil when absent.
func (m *Memory) Content(path string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.files[path]...)
}

// Fail makes every later Fetch and Put return err; nil restores service.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}
