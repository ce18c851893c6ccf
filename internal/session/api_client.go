package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/crystalafinch/authentication/internal/auth/dto"
)

// APIClient talks to the auth endpoints over HTTP. Its cookie jar plays the
// browser's role: the HttpOnly session cookies round-trip automatically and
// are never inspected as a source of truth.
type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string) (*APIClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}, nil
}

type envelope struct {
	OK    bool             `json:"ok"`
	Data  *dto.AuthPayload `json:"data"`
	Error string           `json:"error"`
}

func (c *APIClient) CheckAuth(ctx context.Context) (*dto.UserOutput, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/check-auth", nil)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, nil
	}
	return env.Data.User, nil
}

func (c *APIClient) SignIn(ctx context.Context, creds dto.CredentialsInput) (*dto.UserOutput, error) {
	return c.submitCredentials(ctx, "/api/auth/signin", creds)
}

func (c *APIClient) CreateAccount(ctx context.Context, creds dto.CredentialsInput) (*dto.UserOutput, error) {
	return c.submitCredentials(ctx, "/api/auth/create-account", creds)
}

func (c *APIClient) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil)
	return err
}

func (c *APIClient) submitCredentials(ctx context.Context, path string, creds dto.CredentialsInput) (*dto.UserOutput, error) {
	env, err := c.do(ctx, http.MethodPost, path, creds)
	if err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.User == nil {
		return nil, errors.New("no user data received")
	}
	return env.Data.User, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}

	if !env.OK {
		if env.Error == "" {
			return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return nil, errors.New(env.Error)
	}

	return &env, nil
}
