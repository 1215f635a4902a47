package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
	"github.com/custodia-labs/socrates/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.GitHubAPI = (*Client)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the REST API root, e.g. "https://ghe.example.com/api/v3/".
	// Empty means api.github.com.
	BaseURL string

	// HTTPClient is the base transport. The token is layered on per call.
	HTTPClient *http.Client

	// Timeout bounds a single request. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Client talks to the GitHub REST API on behalf of a caller-supplied token.
// Tokens are never stored; a go-github client is built for each call and
// only the rate limit state is shared.
type Client struct {
	baseURL     *url.URL
	base        *http.Client
	timeout     time.Duration
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client.
func NewClient(opts Options) (*Client, error) {
	c := &Client{
		base:        opts.HTTPClient,
		timeout:     opts.Timeout,
		rateLimiter: NewRateLimiter(),
	}
	if c.base == nil {
		c.base = http.DefaultClient
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: github base URL %q", domain.ErrInvalidInput, opts.BaseURL)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
	}
	return c, nil
}

// RateLimiter returns the shared rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// clientFor builds a go-github client authenticated with token.
func (c *Client) clientFor(ctx context.Context, token string) *gh.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = c.timeout

	client := gh.NewClient(tc)
	if c.baseURL != nil {
		base := *c.baseURL
		upload := *c.baseURL
		client.BaseURL = &base
		client.UploadURL = &upload
	}
	return client
}

// AuthenticatedUser returns the login of the token's owner.
func (c *Client) AuthenticatedUser(ctx context.Context, token string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := c.clientFor(ctx, token).Users.Get(ctx, "")
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return "", c.wrapError(ctx, err, "get authenticated user")
	}
	return user.GetLogin(), nil
}

// repositoryPayload is the subset of GET /repos/{owner}/{repo} we read.
type repositoryPayload struct {
	Name          string          `json:"name"`
	DefaultBranch string          `json:"default_branch"`
	Private       bool            `json:"private"`
	HTMLURL       string          `json:"html_url"`
	Owner         ownerPayload    `json:"owner"`
	Permissions   map[string]bool `json:"permissions"`
}

type ownerPayload struct {
	Login string `json:"login"`
}

// GetRepository fetches repository metadata including the caller's push permission.
func (c *Client) GetRepository(ctx context.Context, token string, ref domain.RepositoryRef) (*domain.RepositoryInfo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	client := c.clientFor(ctx, token)
	req, err := client.NewRequest(http.MethodGet,
		fmt.Sprintf("repos/%s/%s", url.PathEscape(ref.Owner), url.PathEscape(ref.Name)), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var payload repositoryPayload
	resp, err := client.Do(ctx, req, &payload)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(ctx, err, "get repository")
	}

	info := &domain.RepositoryInfo{
		Ref: domain.RepositoryRef{
			Host:  hostOf(payload.HTMLURL, ref.Host),
			Owner: firstNonEmpty(payload.Owner.Login, ref.Owner),
			Name:  firstNonEmpty(payload.Name, ref.Name),
		},
		DefaultBranch: payload.DefaultBranch,
		Private:       payload.Private,
		HTMLURL:       payload.HTMLURL,
		CanPush:       payload.Permissions["push"],
	}
	logger.Debug("repository %s: default branch %q, push=%t", info.Ref, info.DefaultBranch, info.CanPush)
	return info, nil
}

// CreateRepository creates a repository owned by the authenticated user.
func (c *Client) CreateRepository(
	ctx context.Context, token string, req driven.CreateRepositoryRequest,
) (*domain.RepositoryInfo, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: repository name is required", domain.ErrInvalidInput)
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repo, resp, err := c.clientFor(ctx, token).Repositories.Create(ctx, "", &gh.Repository{
		Name:        gh.Ptr(req.Name),
		Description: gh.Ptr(req.Description),
		Private:     gh.Ptr(req.Private),
	})
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(ctx, err, "create repository")
	}

	return &domain.RepositoryInfo{
		Ref: domain.RepositoryRef{
			Host:  hostOf(repo.GetHTMLURL(), domain.DefaultGitHubHost),
			Owner: repo.GetOwner().GetLogin(),
			Name:  repo.GetName(),
		},
		DefaultBranch: repo.GetDefaultBranch(),
		Private:       repo.GetPrivate(),
		HTMLURL:       repo.GetHTMLURL(),
		CanPush:       true,
	}, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types. Non-2xx
// responses become *APIError; rate limiting and transport failures
// become retryable network sync errors.
func (c *Client) wrapError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return domain.NewSyncError(domain.KindNetworkSyncFailed, operation+": rate limited", &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		})
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return domain.NewSyncError(domain.KindNetworkSyncFailed, operation+": secondary rate limit", &RateLimitError{
			ResetAt: time.Now().Add(abuseErr.GetRetryAfter()),
		})
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewSyncError(domain.KindNetworkSyncFailed, operation+" failed", err)
	}

	return fmt.Errorf("%s: %w", operation, err)
}

func hostOf(rawURL, fallback string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	if fallback == "" {
		return domain.DefaultGitHubHost
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
