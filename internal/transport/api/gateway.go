package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"finboard-go/internal/domain/session"
	"finboard-go/internal/platform/config"
	perrors "finboard-go/internal/platform/errors"
	"finboard-go/internal/platform/logging"
)

// Gateway is the single place where the credential is attached to outbound
// requests. Every resource client goes through it. There is no retry and no
// backoff; a failed request surfaces its error to the caller untouched. The
// token itself never appears in logs or wrapped errors.
type Gateway struct {
	client *resty.Client
	store  *session.Store
	logger *logging.Logger
}

// errorBody is the optional message field error responses carry.
type errorBody struct {
	Message string `json:"message"`
}

// NewGateway builds the authenticated request gateway over the configured
// REST boundary.
func NewGateway(cfg config.APIConfig, store *session.Store, logger *logging.Logger) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if token, ok := store.Credential(); ok {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return nil
	})

	return &Gateway{
		client: client,
		store:  store,
		logger: logger,
	}
}

// do executes one request and decodes a successful JSON body into out (when
// non-nil). Transport failures and error statuses come back as KindTransport
// errors carrying the server's message field when present.
func (g *Gateway) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	req := g.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return perrors.Wrap(perrors.KindTransport, op, "request failed", err)
	}

	if resp.IsError() {
		msg := fmt.Sprintf("status %d", resp.StatusCode())
		var parsed errorBody
		if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr == nil && parsed.Message != "" {
			msg = parsed.Message
		}
		return perrors.New(perrors.KindTransport, op, msg)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return perrors.Wrap(perrors.KindData, op, "decode response", err)
		}
	}
	return nil
}
