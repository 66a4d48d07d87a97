package mirror

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/designlib/internal/transport"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
)

const githubRemote = "github"

// GitHubConfig selects a repository file through the contents API.
type GitHubConfig struct {
	// Token is a personal access or app token with contents write access.
	Token string
	// Repo is "owner/name".
	Repo   string
	Branch string
	// APIURL defaults to https://api.github.com.
	APIURL string
	// CommitMessage is used for every write.
	CommitMessage string
	HTTPClient    *http.Client
}

// GitHub is a Remote backed by the GitHub contents API.
type GitHub struct {
	client  *transport.Client
	api     string
	owner   string
	repo    string
	branch  string
	message string
}

var _ Remote = (*GitHub)(nil)

// NewGitHub validates cfg. A missing token is accepted here and reported by
// the first Fetch or Put.
func NewGitHub(cfg GitHubConfig) (*GitHub, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, errors.NewConfigError(githubRemote, fmt.Sprintf("repo %q must be owner/name", cfg.Repo), nil)
	}
	g := &GitHub{
		client: transport.New(transport.BearerAuth{}, cfg.Token,
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithHeader("X-GitHub-Api-Version", "2022-11-28"),
		),
		api:     strings.TrimRight(cfg.APIURL, "/"),
		owner:   owner,
		repo:    repo,
		branch:  cfg.Branch,
		message: cfg.CommitMessage,
	}
	if g.api == "" {
		g.api = constants.DefaultGitHubAPIURL
	}
	if g.branch == "" {
		g.branch = constants.DefaultGitHubBranch
	}
	if g.message == "" {
		g.message = "Update file metadata"
	}
	return g, nil
}

// Name implements Remote.
func (g *GitHub) Name() string { return githubRemote }

// Repo returns "owner/name@branch".
func (g *GitHub) Repo() string { return g.owner + "/" + g.repo + "@" + g.branch }

func (g *GitHub) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.api, url.PathEscape(g.owner), url.PathEscape(g.repo), strings.Join(segments, "/"))
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Fetch implements Remote.
func (g *GitHub) Fetch(ctx context.Context, path string) (Snapshot, error) {
	if !g.client.HasToken() {
		return Snapshot{}, g.missingToken()
	}

	endpoint := g.contentsURL(path) + "?ref=" + url.QueryEscape(g.branch)
	resp, err := g.client.Get(ctx, endpoint)
	if err != nil {
		return Snapshot{}, g.classify(ctx, "fetch", path, "", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return Snapshot{}, nil
	}

	var body contentsResponse
	if err := transport.DecodeResponse(resp, githubRemote, &body); err != nil {
		return Snapshot{}, g.classify(ctx, "fetch", path, "", err)
	}

	content, err := g.decodeContent(ctx, endpoint, body)
	if err != nil {
		return Snapshot{}, g.classify(ctx, "fetch", path, "", err)
	}
	return Snapshot{SHA: body.SHA, Content: content, Exists: true}, nil
}

// decodeContent handles inline base64 and the "none" encoding GitHub uses
// for files over 1MB, which needs a second raw request.
func (g *GitHub) decodeContent(ctx context.Context, endpoint string, body contentsResponse) ([]byte, error) {
	if body.Encoding == "base64" || body.Content != "" {
		clean := strings.NewReplacer("\n", "", "\r", "").Replace(body.Content)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, errors.WrapResource("decode", "content", githubRemote, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", endpoint, err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")
	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(githubRemote, resp.StatusCode, "raw content request failed")
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}
	return data, nil
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Put implements Remote.
func (g *GitHub) Put(ctx context.Context, path string, content []byte, sha string) (string, error) {
	if !g.client.HasToken() {
		return "", g.missingToken()
	}

	resp, err := g.client.Send(ctx, http.MethodPut, g.contentsURL(path), putRequest{
		Message: g.message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  g.branch,
	})
	if err != nil {
		return "", g.classify(ctx, "put", path, sha, err)
	}

	var body putResponse
	if err := transport.DecodeResponse(resp, githubRemote, &body); err != nil {
		return "", g.classify(ctx, "put", path, sha, err)
	}
	return body.Content.SHA, nil
}

func (g *GitHub) missingToken() error {
	return errors.NewAuthenticationError(githubRemote, "token", "no GitHub token configured", nil)
}

// classify maps transport failures onto the remote error kinds.
func (g *GitHub) classify(ctx context.Context, op, path, sha string, err error) error {
	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusConflict || apiErr.StatusCode == http.StatusUnprocessableEntity:
			return errors.NewConflictError(path, sha, apiErr.StatusCode)
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return errors.NewAuthenticationError(githubRemote, "token", apiErr.Message, apiErr)
		case apiErr.StatusCode >= 500:
			return errors.NewUnavailableError(githubRemote, op, apiErr)
		}
		return apiErr
	}
	if ctx.Err() != nil {
		return errors.NewUnavailableError(githubRemote, op, ctx.Err())
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.NewUnavailableError(githubRemote, op, err)
	}
	return err
}
