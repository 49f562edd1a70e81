package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imroc/req/v3"

	"github.com/TomasB/denylist/internal/apperr"
	"github.com/TomasB/denylist/internal/logging"
	"github.com/TomasB/denylist/internal/secret"
)

const rejectsListPath = "/rejects/list.json"

// ErrUnexpectedResponse is returned when the provider answers with a body
// that does not decode into the documented shape.
var ErrUnexpectedResponse = errors.New("unexpected provider response")

// APIError is the structured error body Mandrill returns on failure.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Status     string `json:"status"`
	Code       int    `json:"code"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mandrill %s (code %d, HTTP %d): %s", e.Name, e.Code, e.HTTPStatus, e.Message)
}

// Unwrap lets errors.Is(err, apperr.ErrRequestFailed) match provider errors.
func (e *APIError) Unwrap() error { return apperr.ErrRequestFailed }

type rejectsListRequest struct {
	Key            string `json:"key"`
	Email          string `json:"email"`
	IncludeExpired bool   `json:"include_expired"`
}

// MandrillClient implements RejectLookup against the Mandrill rejects/list API.
type MandrillClient struct {
	client *req.Client
	keys   secret.Source
	logger *slog.Logger
}

// NewMandrillClient creates a client using the given HTTP client (whose base
// URL points at the Mandrill API root) and API key source.
func NewMandrillClient(client *req.Client, keys secret.Source, logger *slog.Logger) *MandrillClient {
	return &MandrillClient{client: client, keys: keys, logger: logger}
}

// Ready reports whether an API key is available.
func (m *MandrillClient) Ready() error {
	if m.keys.Key() == "" {
		return apperr.ErrNotConfigured
	}
	return nil
}

// ListRejects returns the non-expired reject entries for email.
func (m *MandrillClient) ListRejects(ctx context.Context, email string) ([]Reject, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperr.ErrInvalidInput)
	}
	key := m.keys.Key()
	if key == "" {
		return nil, apperr.ErrNotConfigured
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(rejectsListRequest{Key: key, Email: email, IncludeExpired: false}).
		Post(rejectsListPath)
	if err != nil {
		return nil, fmt.Errorf("%w: mandrill rejects/list: %w", apperr.ErrRequestFailed, err)
	}

	body := resp.Bytes()
	if !resp.IsSuccessState() {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			apiErr.HTTPStatus = resp.StatusCode
			return nil, &apiErr
		}
		return nil, fmt.Errorf("%w: mandrill returned HTTP %d", apperr.ErrRequestFailed, resp.StatusCode)
	}

	var rejects []Reject
	if err := json.Unmarshal(body, &rejects); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", apperr.ErrRequestFailed, ErrUnexpectedResponse, err)
	}

	m.logger.Debug("rejects listed", "email", logging.RedactEmail(email), "matches", len(rejects))
	return rejects, nil
}
