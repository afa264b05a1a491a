package leagueapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBasePath = "/api"

// Client is the HTTP implementation of API.
type Client struct {
	baseURL  string
	basePath string
	httpc    *http.Client
	log      zerolog.Logger
}

var _ API = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithBasePath(basePath string) ClientOption {
	return func(c *Client) { c.basePath = basePath }
}

func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		basePath: defaultBasePath,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

type unlockRequest struct {
	Correo string `json:"correo"`
}

type setPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/usuarios/login", loginRequest{Correo: email, Contrasena: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestUnlock(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/usuarios/unlock/request", unlockRequest{Correo: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmUnlock(ctx context.Context, token string) (*MessageResponse, error) {
	var out MessageResponse
	path := "/usuarios/unlock/confirm?token=" + url.QueryEscape(token)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/usuarios/unlock/set-password", setPasswordRequest{Token: token, NewPassword: newPassword}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+c.basePath+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: 0, Message: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
		c.log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("backend rejected request")
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// errorMessage mirrors the backend's error envelope: detail, falling
// back to message, then error, then the HTTP status text.
func errorMessage(data []byte, statusText string) string {
	var env map[string]any
	if json.Unmarshal(data, &env) == nil {
		for _, key := range []string{"detail", "message", "error"} {
			switch v := env[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case nil:
			default:
				if raw, err := json.Marshal(v); err == nil {
					return string(raw)
				}
			}
		}
	}
	return statusText
}
