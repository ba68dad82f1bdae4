package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/hubsai/internal/domain/errors"
	"github.com/polkiloo/hubsai/internal/domain/model"
)

// ErrDisabled is returned by every call of a client without a base URL.
var ErrDisabled = errors.New("backend not configured")

// Client exposes the external HubsAI backend. Calls are not retried.
type Client interface {
	Enabled() bool
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	SetupProfile(ctx context.Context, userID string, profile model.Profile) error
	UpdateProfile(ctx context.Context, userID string, profile model.Profile) error
	ListNFTs(ctx context.Context, userID string) ([]model.NFT, error)
	TransferNFT(ctx context.Context, userID, nftID, toAddress string) error
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}

type profileRequest struct {
	UserID string `json:"userId"`
	model.Profile
}

type transferRequest struct {
	UserID    string `json:"userId"`
	ToAddress string `json:"toAddress"`
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a backend client with default timeout. An empty
// baseURL yields a disabled client.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	c := &HTTPClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if baseURL == "" {
		return c, nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend url must be absolute")
	}
	c.baseURL = parsed
	return c, nil
}

func (c *HTTPClient) Enabled() bool {
	return c.baseURL != nil
}

func (c *HTTPClient) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupProfile submits the onboarding profile. A non-2xx response yields
// *errors.ProfileSetupError.
func (c *HTTPClient) SetupProfile(ctx context.Context, userID string, profile model.Profile) error {
	return c.profileCall(ctx, http.MethodPost, "/api/profile/setup", userID, profile)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, profile model.Profile) error {
	return c.profileCall(ctx, http.MethodPut, "/api/profile", userID, profile)
}

func (c *HTTPClient) profileCall(ctx context.Context, method, p, userID string, profile model.Profile) error {
	err := c.do(ctx, method, p, profileRequest{UserID: userID, Profile: profile}, nil)
	var se *statusError
	if errors.As(err, &se) {
		return &domainErrors.ProfileSetupError{Status: se.status, Message: extractMessage(se.status, se.body)}
	}
	return err
}

func (c *HTTPClient) ListNFTs(ctx context.Context, userID string) ([]model.NFT, error) {
	var out struct {
		NFTs []model.NFT `json:"nfts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/nfts?userId="+url.QueryEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out.NFTs, nil
}

func (c *HTTPClient) TransferNFT(ctx context.Context, userID, nftID, toAddress string) error {
	p := "/api/nfts/" + url.PathEscape(nftID) + "/transfer"
	return c.do(ctx, http.MethodPost, p, transferRequest{UserID: userID, ToAddress: toAddress}, nil)
}

type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend error: %d %s", e.status, http.StatusText(e.status))
}

func (c *HTTPClient) do(ctx context.Context, method, p string, in, out any) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	endpoint := *c.baseURL
	rawPath, query, _ := strings.Cut(p, "?")
	escaped := path.Join(endpoint.EscapedPath(), rawPath)
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("backend path %q: %w", rawPath, err)
	}
	endpoint.Path, endpoint.RawPath = unescaped, escaped
	endpoint.RawQuery = query

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("backend request failed",
			slog.String("method", method),
			slog.String("path", rawPath),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)))
		return &statusError{status: resp.StatusCode, body: raw}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}
	return nil
}

// extractMessage pulls a human readable message out of an error body.
func extractMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}
