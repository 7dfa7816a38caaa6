// Package upstream implements the HTTP client for the inference provider.
// It builds outbound chat-completion payloads from inbound request bodies,
// performs the single forwarding call with bearer-token authentication, and
// exposes both buffered and channel-based streaming entry points.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/pankratov/modelrelay/internal/config"
	"github.com/pankratov/modelrelay/internal/constant"
	"github.com/pankratov/modelrelay/internal/registry"
	"github.com/pankratov/modelrelay/internal/translator"
	"github.com/pankratov/modelrelay/internal/util"
)

// ErrorMessage carries an upstream failure together with the HTTP status
// that should be mirrored to the client. Transport-level failures use 500.
type ErrorMessage struct {
	// StatusCode is the upstream HTTP status, or 500 for transport errors.
	StatusCode int

	// Error holds the upstream message.
	Error error
}

// Client forwards chat-completion requests to the upstream provider. It is
// stateless apart from its immutable configuration and model table and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        *config.Config
	table      *registry.ModelTable
}

// NewClient creates an upstream client.
//
// Parameters:
//   - cfg: The application configuration
//   - table: The model table used to resolve client-facing names
//
// Returns:
//   - *Client: A new upstream client instance
func NewClient(cfg *config.Config, table *registry.ModelTable) *Client {
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		table:      table,
	}
}

// BuildPayload builds the outbound request body from the inbound one: the
// model name is replaced with its resolved provider identifier, messages
// are copied verbatim, temperature and max_tokens are defaulted when
// absent, and the stream flag is forwarded unchanged. When thinking mode is
// on, the provider's reasoning knob is set.
func (c *Client) BuildPayload(rawJSON []byte) []byte {
	modelName := gjson.GetBytes(rawJSON, "model").String()
	out, _ := sjson.SetBytes(rawJSON, "model", c.table.Resolve(modelName))

	if !gjson.GetBytes(out, "temperature").Exists() {
		out, _ = sjson.SetBytes(out, "temperature", c.cfg.DefaultTemperature)
	}
	if !gjson.GetBytes(out, "max_tokens").Exists() {
		out, _ = sjson.SetBytes(out, "max_tokens", c.cfg.DefaultMaxTokens)
	}
	if c.cfg.ThinkingMode {
		out, _ = sjson.SetBytes(out, "chat_template_kwargs.thinking", true)
	}
	return out
}

// apiRequest performs the single outbound HTTPS call. Any transport error
// or non-2xx upstream status is mapped to an ErrorMessage carrying the
// upstream status code and body.
func (c *Client) apiRequest(ctx context.Context, rawJSON []byte, stream bool) (io.ReadCloser, *ErrorMessage) {
	url := strings.TrimSuffix(c.cfg.UpstreamBaseURL, "/") + "/chat/completions"
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(rawJSON))
	if errReq != nil {
		return nil, &ErrorMessage{
			StatusCode: http.StatusInternalServerError,
			Error:      fmt.Errorf("failed to create request: %w", errReq),
		}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UpstreamAPIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.UpstreamAPIKey))
	}
	req.Header.Set("User-Agent", constant.ServiceName+"/"+constant.Version)

	if stream {
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
	}

	log.Debugf("upstream request: %s key=%s stream=%t", url, util.HideAPIKey(c.cfg.UpstreamAPIKey), stream)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ErrorMessage{StatusCode: http.StatusInternalServerError, Error: fmt.Errorf("failed to execute request: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() {
			if errClose := resp.Body.Close(); errClose != nil {
				log.Warnf("failed to close response body: %v", errClose)
			}
		}()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ErrorMessage{StatusCode: resp.StatusCode, Error: fmt.Errorf("%s", string(bodyBytes))}
	}

	return resp.Body, nil
}

// Send forwards a non-streaming request and returns the raw upstream
// completion body.
//
// Parameters:
//   - ctx: The context for the request
//   - rawJSON: The inbound OpenAI-compatible request body
//
// Returns:
//   - []byte: The raw upstream response body
//   - *ErrorMessage: An error message if the request fails
func (c *Client) Send(ctx context.Context, rawJSON []byte) ([]byte, *ErrorMessage) {
	payload := c.BuildPayload(rawJSON)
	payload, _ = sjson.SetBytes(payload, "stream", false)

	respBody, errMsg := c.apiRequest(ctx, payload, false)
	if errMsg != nil {
		return nil, errMsg
	}
	defer func() {
		_ = respBody.Close()
	}()

	bodyBytes, errRead := io.ReadAll(respBody)
	if errRead != nil {
		return nil, &ErrorMessage{StatusCode: http.StatusInternalServerError, Error: errRead}
	}
	return bodyBytes, nil
}

// SendStream forwards a streaming request and returns the SSE frame
// payloads over a channel. The response body is read in fixed-size chunks
// and reassembled into logical lines with a per-connection LineBuffer;
// non-data lines are discarded and the stream ends at the [DONE] marker or
// on upstream close. Errors are delivered on the second channel; both
// channels are closed when the stream finishes.
//
// Parameters:
//   - ctx: The context for the request
//   - rawJSON: The inbound OpenAI-compatible request body
//
// Returns:
//   - <-chan []byte: A channel receiving each SSE frame payload
//   - <-chan *ErrorMessage: A channel receiving upstream errors
func (c *Client) SendStream(ctx context.Context, rawJSON []byte) (<-chan []byte, <-chan *ErrorMessage) {
	dataChan := make(chan []byte)
	errChan := make(chan *ErrorMessage)

	go func() {
		defer close(errChan)
		defer close(dataChan)

		payload := c.BuildPayload(rawJSON)
		payload, _ = sjson.SetBytes(payload, "stream", true)

		stream, errMsg := c.apiRequest(ctx, payload, true)
		if errMsg != nil {
			select {
			case errChan <- errMsg:
			case <-ctx.Done():
			}
			return
		}
		defer func() {
			_ = stream.Close()
		}()

		lineBuffer := &translator.LineBuffer{}
		chunk := make([]byte, 4096)
		started := time.Now()

		for {
			n, errRead := stream.Read(chunk)
			if n > 0 {
				for _, line := range lineBuffer.Feed(chunk[:n]) {
					data, ok := translator.ExtractData(line)
					if !ok {
						continue
					}
					if translator.IsDone(data) {
						log.Debugf("upstream stream finished after %s", time.Since(started).Truncate(time.Millisecond))
						return
					}
					select {
					case dataChan <- data:
					case <-ctx.Done():
						return
					}
				}
			}
			if errRead != nil {
				if errRead == io.EOF {
					// Flush a final line the upstream sent without a
					// trailing newline.
					if data, ok := translator.ExtractData(lineBuffer.Rest()); ok && !translator.IsDone(data) {
						select {
						case dataChan <- data:
						case <-ctx.Done():
						}
					}
				} else if ctx.Err() == nil {
					select {
					case errChan <- &ErrorMessage{StatusCode: http.StatusInternalServerError, Error: errRead}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()

	return dataChan, errChan
}
