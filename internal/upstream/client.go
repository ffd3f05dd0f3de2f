package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Parzival048/natekarfront/internal/session"
	"github.com/Parzival048/natekarfront/pkg/retry"
)

// Config holds upstream client settings. BaseURL includes the API prefix,
// e.g. http://localhost:5000/api.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	ExportTimeout time.Duration
}

// Client is the single configured HTTP client for the remote operations API.
// Every feature call goes through it; the bearer token is attached per call.
type Client struct {
	base       *url.URL
	http       *http.Client
	exportHTTP *http.Client
	retrier    *retry.Retrier
}

// New creates a Client with a keep-alive transport shared across calls.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base URL must be absolute: %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	exportTimeout := cfg.ExportTimeout
	if exportTimeout == 0 {
		exportTimeout = 60 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		base:       base,
		http:       &http.Client{Transport: transport, Timeout: timeout},
		exportHTTP: &http.Client{Transport: transport, Timeout: exportTimeout},
		retrier:    retry.New(nil),
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// LoginResult is a successful login: a bearer token plus the user it belongs to.
type LoginResult struct {
	Token string
	User  *session.User
}

// Login exchanges credentials for a token. The response must carry a
// non-empty token, a user object and a known role; anything less is
// ErrInvalidServerResponse and the caller must not touch the session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var decoded struct {
		Token string        `json:"token"`
		User  *session.User `json:"user"`
	}
	if err := c.postJSON(ctx, "/auth/login", "", body, &decoded); err != nil {
		return nil, err
	}

	if decoded.Token == "" || decoded.User == nil || decoded.User.Role == "" {
		return nil, fmt.Errorf("%w: login response missing token, user or role", ErrInvalidServerResponse)
	}
	if !session.KnownRole(decoded.User.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidServerResponse, decoded.User.Role)
	}

	return &LoginResult{Token: decoded.Token, User: decoded.User}, nil
}

// RegisterPayload is the new-account request forwarded to the remote API.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account. It never logs the user in.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) error {
	return c.postJSON(ctx, "/auth/register", "", payload, nil)
}

// Profile resolves a bearer token into the user profile behind it.
// Implements session.ProfileFetcher.
func (c *Client) Profile(ctx context.Context, token string) (*session.User, error) {
	var user session.User
	if err := c.getJSON(ctx, "/users/profile", token, nil, &user); err != nil {
		return nil, err
	}
	if user.Role == "" {
		return nil, fmt.Errorf("%w: profile response missing role", ErrInvalidServerResponse)
	}
	return &user, nil
}

// Supervisors lists supervisors for the complaint form.
func (c *Client) Supervisors(ctx context.Context, token string) ([]session.User, error) {
	var users []session.User
	if err := c.getJSON(ctx, "/users/supervisors", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Export is a streamed file download from the remote API. The caller owns Body.
type Export struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ExportAttendance fetches the monthly attendance workbook as a stream.
func (c *Client) ExportAttendance(ctx context.Context, token string, month, year int) (*Export, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	req, err := c.newRequest(ctx, http.MethodGet, "/attendance/export?"+q.Encode(), token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.exportHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return &Export{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// getJSON retries transport failures; GETs against the operations API are
// idempotent. Rejections and malformed responses are permanent.
func (c *Client) getJSON(ctx context.Context, path, token string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		if err := c.do(req, out); err != nil {
			if errors.Is(err, ErrTransport) {
				return err
			}
			return retry.Permanent(err)
		}
		return nil
	})
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, token, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidServerResponse, err)
	}
	return nil
}

// decodeError extracts the API's error message. The remote API answers with
// either {"message": ...} or {"error": ...}.
func decodeError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		ErrMsg  string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.ErrMsg
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
