// Package handlers provides the HTTP handlers for the relay's OpenAI-compatible
// endpoints. It includes the shared error envelope, the chat-completion
// handler for streaming and non-streaming responses, and the model listing.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/pankratov/modelrelay/internal/config"
	"github.com/pankratov/modelrelay/internal/registry"
	"github.com/pankratov/modelrelay/internal/upstream"
)

// ErrorResponse represents a standard error response format for the API.
// It contains a single ErrorDetail field.
type ErrorResponse struct {
	// Error contains detailed information about the error that occurred.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail provides specific information about an error that occurred.
// It includes a human-readable message, an error type, and an optional error code.
type ErrorDetail struct {
	// Message is a human-readable message providing more details about the error.
	Message string `json:"message"`

	// Type is the category of error that occurred (e.g., "invalid_request_error").
	Type string `json:"type"`

	// Code is a short code identifying the error, if applicable.
	Code string `json:"code,omitempty"`
}

// Handler contains the handlers for the relay's API endpoints. It holds the
// immutable configuration, the model table, and the upstream client; no
// per-request state lives here.
type Handler struct {
	// Cfg holds the application configuration.
	Cfg *config.Config

	// Table resolves client-facing model names.
	Table *registry.ModelTable

	// Upstream forwards requests to the inference provider.
	Upstream *upstream.Client
}

// NewHandler creates a new API handler instance.
//
// Parameters:
//   - cfg: The application configuration
//   - table: The model table
//   - up: The upstream client
//
// Returns:
//   - *Handler: A new handler instance
func NewHandler(cfg *config.Config, table *registry.ModelTable, up *upstream.Client) *Handler {
	return &Handler{
		Cfg:      cfg,
		Table:    table,
		Upstream: up,
	}
}

// WriteErrorResponse serializes an upstream failure into the uniform error
// envelope, mirroring the upstream status code. When the upstream body is
// itself an error envelope, its message is lifted out.
func WriteErrorResponse(c *gin.Context, errMsg *upstream.ErrorMessage) {
	message := errMsg.Error.Error()
	if parsed := gjson.Get(message, "error.message"); parsed.Exists() {
		message = parsed.String()
	}

	c.JSON(errMsg.StatusCode, ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    "invalid_request_error",
			Code:    strconv.Itoa(errMsg.StatusCode),
		},
	})
}
