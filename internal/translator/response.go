package translator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/pankratov/modelrelay/internal/constant"
)

// ShapeCompletion maps an upstream completion object into the OpenAI
// chat-completion response envelope. It synthesizes an identifier and
// timestamp, echoes the client-requested model name, copies each choice's
// message content (prefixing reasoning wrapped in marker tags when display
// is enabled, stripping it otherwise), and zeroes the usage block when the
// upstream omits it.
//
// Parameters:
//   - upstream: The raw upstream completion JSON
//   - model: The client-requested model name to echo back
//   - display: Whether reasoning content is folded into the message text
//
// Returns:
//   - []byte: The OpenAI-compatible response body
func ShapeCompletion(upstream []byte, model string, display bool) []byte {
	out := `{"id":"","object":"chat.completion","created":0,"model":"","choices":[],"usage":{"prompt_tokens":0,"completion_tokens":0,"total_tokens":0}}`
	out, _ = sjson.Set(out, "id", "chatcmpl-"+uuid.NewString())
	out, _ = sjson.Set(out, "created", time.Now().Unix())
	out, _ = sjson.Set(out, "model", model)

	root := gjson.ParseBytes(upstream)

	index := 0
	root.Get("choices").ForEach(func(_, choice gjson.Result) bool {
		message := choice.Get("message")
		content := message.Get("content").String()

		var reasoning string
		for _, field := range reasoningFields {
			if v := message.Get(field); v.Exists() && v.String() != "" {
				reasoning = v.String()
				break
			}
		}
		if display && reasoning != "" {
			content = constant.ThinkOpenTag + reasoning + constant.ThinkCloseTag + content
		}

		finishReason := choice.Get("finish_reason").String()
		if finishReason == "" {
			finishReason = "stop"
		}

		prefix := fmt.Sprintf("choices.%d", index)
		out, _ = sjson.Set(out, prefix+".index", index)
		out, _ = sjson.Set(out, prefix+".message.role", "assistant")
		out, _ = sjson.Set(out, prefix+".message.content", content)
		out, _ = sjson.Set(out, prefix+".finish_reason", finishReason)
		index++
		return true
	})

	if usage := root.Get("usage"); usage.Exists() && usage.IsObject() {
		out, _ = sjson.SetRaw(out, "usage", usage.Raw)
	}

	return []byte(out)
}
