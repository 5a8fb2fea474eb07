// Package remote is the HTTP transport the invite workflow uses to reach the API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/stratum-spaces/internal/config"
	"github.com/stanstork/stratum-spaces/internal/models"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient builds a client from the api section of the config.
func NewClient(cfg config.APIConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "api_client").Logger(),
	}
}

// Ping checks that the API answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// FindAccountByEmail returns the account registered under email, or nil if there is none.
func (c *Client) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	path := "/api/accounts/lookup?email=" + url.QueryEscape(email)
	err := c.do(ctx, http.MethodGet, path, nil, &account)
	if StatusCode(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetSpace fetches the members and pending invites of a space.
func (c *Client) GetSpace(ctx context.Context, spaceID string) (models.SpaceSnapshot, error) {
	var snap models.SpaceSnapshot
	err := c.do(ctx, http.MethodGet, "/api/spaces/"+url.PathEscape(spaceID), nil, &snap)
	return snap, err
}

// SaveInvite posts a sealed invite and returns the stored copy.
func (c *Client) SaveInvite(ctx context.Context, invite models.Invite) (models.Invite, error) {
	if !invite.IsSealed() {
		return models.Invite{}, errors.New("refusing to send an unsealed invite")
	}
	var saved models.Invite
	path := "/api/spaces/" + url.PathEscape(invite.SpaceID) + "/invites"
	if err := c.do(ctx, http.MethodPost, path, invite, &saved); err != nil {
		return models.Invite{}, err
	}
	return saved, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}
