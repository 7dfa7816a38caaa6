package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/net/context"

	"github.com/pankratov/modelrelay/internal/translator"
)

// ChatCompletions handles the /v1/chat/completions endpoint.
// It determines whether the request is for a streaming or non-streaming
// response and calls the appropriate handler.
//
// Parameters:
//   - c: The Gin context containing the HTTP request and response
func (h *Handler) ChatCompletions(c *gin.Context) {
	rawJSON, err := c.GetRawData()
	// If data retrieval fails, return a 400 Bad Request error.
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Message: fmt.Sprintf("Invalid request: %v", err),
				Type:    "invalid_request_error",
			},
		})
		return
	}

	// Check if the client requested a streaming response.
	streamResult := gjson.GetBytes(rawJSON, "stream")
	if streamResult.Type == gjson.True {
		h.handleStreamingResponse(c, rawJSON)
	} else {
		h.handleNonStreamingResponse(c, rawJSON)
	}
}

// handleNonStreamingResponse forwards a buffered request upstream and shapes
// the completion object into the OpenAI response envelope before sending it
// back to the client.
//
// Parameters:
//   - c: The Gin context containing the HTTP request and response
//   - rawJSON: The raw JSON bytes of the OpenAI-compatible request
func (h *Handler) handleNonStreamingResponse(c *gin.Context, rawJSON []byte) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	body, errMsg := h.Upstream.Send(ctx, rawJSON)
	if errMsg != nil {
		log.Warnf("upstream request failed: status=%d %v", errMsg.StatusCode, errMsg.Error)
		WriteErrorResponse(c, errMsg)
		return
	}

	modelName := gjson.GetBytes(rawJSON, "model").String()
	if modelName == "" {
		modelName = h.Table.Resolve(modelName)
	}

	shaped := translator.ShapeCompletion(body, modelName, h.Cfg.ReasoningDisplay)
	c.Data(http.StatusOK, "application/json", shaped)
}

// handleStreamingResponse establishes a streaming connection with the
// upstream provider and forwards re-framed chunks to the client in real
// time using Server-Sent Events. Each chunk passes through a per-connection
// StreamRewriter before transmission.
//
// Parameters:
//   - c: The Gin context containing the HTTP request and response
//   - rawJSON: The raw JSON bytes of the OpenAI-compatible request
func (h *Handler) handleStreamingResponse(c *gin.Context, rawJSON []byte) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	// Get the http.Flusher interface to manually flush the response.
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{
				Message: "Streaming not supported",
				Type:    "server_error",
			},
		})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	respChan, errChan := h.Upstream.SendStream(ctx, rawJSON)
	rewriter := translator.NewStreamRewriter(h.Cfg.ReasoningDisplay)
	wroteFrames := false

	for {
		select {
		// Handle client disconnection.
		case <-c.Request.Context().Done():
			log.Debugf("client disconnected: %v", c.Request.Context().Err())
			return
		// Process incoming response chunks.
		case chunk, okStream := <-respChan:
			if !okStream {
				// Stream is closed, send the final [DONE] message.
				_, _ = fmt.Fprintf(c.Writer, "data: [DONE]\n\n")
				flusher.Flush()
				return
			}
			_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", rewriter.Rewrite(chunk))
			flusher.Flush()
			wroteFrames = true
		// Handle errors from the upstream.
		case errMsg, okError := <-errChan:
			if !okError {
				errChan = nil
				continue
			}
			log.Warnf("upstream stream failed: status=%d %v", errMsg.StatusCode, errMsg.Error)
			if !wroteFrames {
				WriteErrorResponse(c, errMsg)
				return
			}
			// Frames already went out; the downstream connection is simply
			// closed with no further frames.
			return
		}
	}
}
