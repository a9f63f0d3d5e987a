package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/errors"
	"skillbridge-api/pkg/logger"
)

// SupabaseSession is the token payload returned by the auth backend
type SupabaseSession struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresIn    int                `json:"expires_in"`
	User         domain.SessionUser `json:"user"`
}

// supabaseError is the error body the auth endpoints return
type supabaseError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e *supabaseError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorDescription
}

// SupabaseClient talks to the hosted auth endpoints. Account storage and
// credential verification stay on the backend; this client only forwards.
type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSupabaseClient creates a new Supabase auth client
func NewSupabaseClient(baseURL, anonKey string, logger *logger.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SignUp registers a new auth user. The metadata travels as user_metadata
// so the sign-up trigger can seed the profile row from it.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*domain.SessionUser, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}

	var resp struct {
		ID           string                 `json:"id"`
		Email        string                 `json:"email"`
		UserMetadata map[string]interface{} `json:"user_metadata"`
	}
	if err := c.post(ctx, "/auth/v1/signup", body, &resp); err != nil {
		return nil, err
	}

	c.logger.WithField("email", email).Info("Auth user created")
	return &domain.SessionUser{ID: resp.ID, Email: resp.Email, Metadata: resp.UserMetadata}, nil
}

// PasswordGrant exchanges credentials for a session
func (c *SupabaseClient) PasswordGrant(ctx context.Context, email, password string) (*SupabaseSession, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var session SupabaseSession
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", body, &session); err != nil {
		return nil, err
	}

	if session.AccessToken == "" || session.User.ID == "" {
		return nil, errors.NewAuthenticationError("Sign-in rejected by auth backend")
	}

	return &session, nil
}

// SignOut revokes the session belonging to the given access token
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return errors.NewInternalError("failed to create logout request", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalError("failed to call auth backend", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.NewExternalError(fmt.Sprintf("logout returned status %d", resp.StatusCode), nil)
	}

	return nil
}

func (c *SupabaseClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternalError("failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return errors.NewInternalError("failed to create request", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalError("failed to call auth backend", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalError("failed to read auth response", err)
	}

	if resp.StatusCode >= 300 {
		var authErr supabaseError
		_ = json.Unmarshal(respBody, &authErr)
		c.logger.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"path":        path,
		}).Warn("Auth backend rejected request")
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return errors.NewAuthenticationError(authErr.text())
		}
		return errors.NewExternalError(fmt.Sprintf("auth backend returned status %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.NewExternalError("failed to parse auth response", err)
	}

	return nil
}
