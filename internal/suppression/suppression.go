// Package suppression turns provider reject entries into the lookup result
// shown to operators.
package suppression

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/TomasB/denylist/internal/apperr"
	"github.com/TomasB/denylist/internal/data"
)

// MsgEmailRequired is returned to callers that omit the email address.
const MsgEmailRequired = "Email required"

// MsgLookupFailed is returned when the provider failed without a message of its own.
const MsgLookupFailed = "denylist lookup failed"

// Result is the normalized lookup outcome. IsSubscribed is true when the
// address is not suppressed; Message carries the first suppression reason
// otherwise and is null when there is none.
type Result struct {
	IsSubscribed bool    `json:"isSubscribed"`
	Message      *string `json:"message"`
}

// Response is the JSON envelope of the lookup endpoint. Exactly one of Data
// and Error is set.
type Response struct {
	Data  *Result `json:"data,omitempty"`
	Error string  `json:"error,omitempty"`
}

// Normalize maps the provider's matches to a Result.
func Normalize(rejects []data.Reject) Result {
	if len(rejects) == 0 {
		return Result{IsSubscribed: true}
	}
	reason := rejects[0].Reason
	return Result{IsSubscribed: false, Message: &reason}
}

// Service checks addresses against the provider's suppression list.
type Service struct {
	lookup data.RejectLookup
}

// NewService creates a Service backed by lookup.
func NewService(lookup data.RejectLookup) *Service {
	return &Service{lookup: lookup}
}

// Check trims email, rejects it when empty and otherwise queries the provider.
func (s *Service) Check(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Result{}, fmt.Errorf("%w: email is required", apperr.ErrInvalidInput)
	}
	rejects, err := s.lookup.ListRejects(ctx, email)
	if err != nil {
		return Result{}, err
	}
	return Normalize(rejects), nil
}

// StatusCode maps a Check error to the HTTP status of the lookup endpoint.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// PublicMessage returns the text shown to callers for a Check error. The
// provider's own message is passed through verbatim.
func PublicMessage(err error) string {
	var apiErr *data.APIError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return MsgEmailRequired
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, apperr.ErrNotConfigured):
		return apperr.ErrNotConfigured.Error()
	default:
		return MsgLookupFailed
	}
}

// Respond runs Check and wraps the outcome in the endpoint envelope.
func (s *Service) Respond(ctx context.Context, email string) (Response, int, error) {
	result, err := s.Check(ctx, email)
	if err != nil {
		return Response{Error: PublicMessage(err)}, StatusCode(err), err
	}
	return Response{Data: &result}, http.StatusOK, nil
}
