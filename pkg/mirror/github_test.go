package mirror_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/mirror"
)

const (
	testToken = "ghp_test"
	repoPath  = "/repos/acme/designs/contents/"
)

type remoteFile struct {
	content []byte
	sha     string
}

// fakeGitHub is an in-memory contents API for a single repository.
type fakeGitHub struct {
	mu       sync.Mutex
	files    map[string]remoteFile
	seq      int
	gets     int
	puts     int
	status   int // forced response status when non-zero
	branches []string

	// beforePut runs ahead of each PUT, outside the lock.
	beforePut func(path string)
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{files: map[string]remoteFile{}}
}

func (f *fakeGitHub) nextSHA() string {
	f.seq++
	return fmt.Sprintf("%040d", f.seq)
}

// set writes path directly, as another client would.
func (f *fakeGitHub) set(path string, content []byte) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha := f.nextSHA()
	f.files[path] = remoteFile{content: content, sha: sha}
	return sha
}

func (f *fakeGitHub) get(path string) (remoteFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rf, ok := f.files[path]
	return rf, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// wrap breaks base64 into 60 character lines like the real API.
func wrap(s string) string {
	var b strings.Builder
	for len(s) > 60 {
		b.WriteString(s[:60] + "\n")
		s = s[60:]
	}
	b.WriteString(s + "\n")
	return b.String()
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}
	if f.status != 0 {
		writeJSON(w, f.status, map[string]string{"message": "forced"})
		return
	}
	if !strings.HasPrefix(r.URL.Path, repoPath) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	path := strings.TrimPrefix(r.URL.Path, repoPath)

	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		f.gets++
		f.branches = append(f.branches, r.URL.Query().Get("ref"))
		rf, ok := f.files[path]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"sha":      rf.sha,
			"encoding": "base64",
			"content":  wrap(base64.StdEncoding.EncodeToString(rf.content)),
		})

	case http.MethodPut:
		var body struct {
			Message, Content, SHA, Branch string
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		if f.beforePut != nil {
			f.beforePut(path)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.puts++
		f.branches = append(f.branches, body.Branch)
		existing, exists := f.files[path]
		switch {
		case exists && body.SHA == "":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": `Invalid request. "sha" wasn't supplied.`})
			return
		case body.SHA != "" && (!exists || existing.sha != body.SHA):
			writeJSON(w, http.StatusConflict, map[string]string{"message": "is at " + existing.sha + " but expected " + body.SHA})
			return
		}
		content, err := base64.StdEncoding.DecodeString(body.Content)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad content"})
			return
		}
		sha := f.nextSHA()
		f.files[path] = remoteFile{content: content, sha: sha}
		status := http.StatusOK
		if !exists {
			status = http.StatusCreated
		}
		writeJSON(w, status, map[string]any{"content": map[string]string{"sha": sha, "path": path}})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newRemote(t *testing.T, fake http.Handler, token string) *mirror.GitHub {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gh, err := mirror.NewGitHub(mirror.GitHubConfig{
		Token:  token,
		Repo:   "acme/designs",
		APIURL: srv.URL,
	})
	require.NoError(t, err)
	return gh
}

func TestGitHubFetchAbsent(t *testing.T) {
	gh := newRemote(t, newFakeGitHub(), testToken)
	snap, err := gh.Fetch(context.Background(), "file_metadata.csv")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.Empty(t, snap.SHA)
}

func TestGitHubPutAndFetch(t *testing.T) {
	fake := newFakeGitHub()
	gh := newRemote(t, fake, testToken)
	ctx := context.Background()
	content := []byte(strings.Repeat("plan1.pdf,2D Plans,2024-03-01 09:00:00\n", 5))

	sha, err := gh.Put(ctx, "data/file_metadata.csv", content, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sha)

	snap, err := gh.Fetch(ctx, "data/file_metadata.csv")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Equal(t, sha, snap.SHA)
	assert.Equal(t, content, snap.Content)

	for _, b := range fake.branches {
		assert.Equal(t, "main", b)
	}
}

func TestGitHubPutStaleSHA(t *testing.T) {
	fake := newFakeGitHub()
	fake.set("f.csv", []byte("old"))
	gh := newRemote(t, fake, testToken)

	_, err := gh.Put(context.Background(), "f.csv", []byte("new"), "deadbeef")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))

	var conflict *errors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, http.StatusConflict, conflict.StatusCode)

	_, err = gh.Put(context.Background(), "f.csv", []byte("new"), "")
	assert.True(t, errors.IsConflict(err), "creating over an existing file conflicts")
}

func TestGitHubMissingTokenMakesNoRequest(t *testing.T) {
	fake := newFakeGitHub()
	gh := newRemote(t, fake, "")

	_, err := gh.Fetch(context.Background(), "f.csv")
	assert.ErrorIs(t, err, errors.ErrRemoteAuth)
	_, err = gh.Put(context.Background(), "f.csv", []byte("x"), "")
	assert.ErrorIs(t, err, errors.ErrRemoteAuth)

	assert.Zero(t, fake.gets+fake.puts)
}

func TestGitHubRejectedToken(t *testing.T) {
	gh := newRemote(t, newFakeGitHub(), "wrong")
	_, err := gh.Fetch(context.Background(), "f.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRemoteAuth)

	var authErr *errors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Error(), "Bad credentials")
}

func TestGitHubServerErrorIsUnavailable(t *testing.T) {
	fake := newFakeGitHub()
	fake.status = http.StatusServiceUnavailable
	gh := newRemote(t, fake, testToken)

	_, err := gh.Fetch(context.Background(), "f.csv")
	assert.ErrorIs(t, err, errors.ErrRemoteUnavailable)
}

func TestGitHubUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gh, err := mirror.NewGitHub(mirror.GitHubConfig{Token: testToken, Repo: "acme/designs", APIURL: url})
	require.NoError(t, err)

	_, err = gh.Fetch(context.Background(), "f.csv")
	assert.ErrorIs(t, err, errors.ErrRemoteUnavailable)
}

func TestNewGitHubValidatesRepo(t *testing.T) {
	for _, repo := range []string{"", "acme", "/designs", "acme/", "a/b/c"} {
		_, err := mirror.NewGitHub(mirror.GitHubConfig{Repo: repo})
		assert.Error(t, err, repo)
	}
}
