package data

import (
	"log/slog"
	"time"

	"github.com/imroc/req/v3"
)

// UserAgent identifies this service to the provider.
const UserAgent = "subscriber-utility (+denylist lookup)"

// NewHTTPClient builds the *req.Client used to talk to the provider.
// When debug is true an OnAfterResponse hook logs method, URL and status at
// DEBUG level, plus a body snippet for non-2xx responses.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger, debug bool) *req.Client {
	client := req.NewClient().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetUserAgent(UserAgent).
		SetCommonHeader("Accept", "application/json")

	if debug && logger != nil {
		attachDebugHook(client, logger)
	}
	return client
}

func attachDebugHook(client *req.Client, logger *slog.Logger) {
	client.OnAfterResponse(func(_ *req.Client, resp *req.Response) error {
		if resp.Response == nil || resp.Request == nil || resp.Request.RawRequest == nil {
			return nil
		}
		logger.Debug("provider response",
			"method", resp.Request.RawRequest.Method,
			"url", resp.Request.RawRequest.URL.String(),
			"status", resp.StatusCode,
		)
		if !resp.IsSuccessState() {
			body := resp.String()
			if len(body) > 512 {
				body = body[:512]
			}
			logger.Debug("provider error body", "status", resp.StatusCode, "body", body)
		}
		return nil
	})
}
