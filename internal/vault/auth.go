package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Login authenticates against the given endpoint and returns a session
// client bound to it. Credentials are sent exactly once; there is no retry
// loop because every failure class here is terminal for the run:
//
//   - HTTP 401            -> ErrInvalidCredentials
//   - other non-200       -> ErrServerError (wrapped in *APIError)
//   - connection/timeout  -> the transport error, wrapped
//   - 200 without a token -> ErrNoToken
func Login(ctx context.Context, ep Endpoint, email, password string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("vault: encoding login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("vault: creating login request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vault: login request to %s: %w", ep.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "login failed",
			Err:        ErrServerError,
		}
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return nil, ErrNoToken
	}

	logger.Info("login successful", slog.String("endpoint", ep.URL), slog.String("email", email))

	return &Client{
		baseURL:    ep.URL,
		token:      body.Token,
		userAgent:  DefaultUserAgent,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}
