package translator

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/pankratov/modelrelay/internal/constant"
)

// reasoningFields are the delta/message fields upstream providers use for
// chain-of-thought text, checked in order.
var reasoningFields = []string{"reasoning_content", "reasoning"}

// StreamRewriter rewrites streamed chat-completion chunks, moving reasoning
// content into the visible message text wrapped in marker tags. It carries
// the reasoning-open flag across chunks, so one rewriter serves exactly one
// connection and must not be shared.
type StreamRewriter struct {
	display       bool
	reasoningOpen bool
}

// NewStreamRewriter returns a rewriter for a single streaming connection.
// When display is false, reasoning fields are stripped from each chunk and
// no marker tags are emitted.
func NewStreamRewriter(display bool) *StreamRewriter {
	return &StreamRewriter{display: display}
}

// Rewrite transforms a single SSE payload. Malformed (non-JSON) payloads
// are returned unchanged so a bad frame never aborts the stream. For JSON
// payloads, reasoning text on the first delta is folded into content: the
// opening marker is prepended once when reasoning begins, the closing
// marker once when ordinary content resumes, and the reasoning fields are
// removed before re-serialization.
func (r *StreamRewriter) Rewrite(payload []byte) []byte {
	if !gjson.ValidBytes(payload) {
		return payload
	}

	root := gjson.ParseBytes(payload)
	delta := root.Get("choices.0.delta")
	if !delta.Exists() {
		return payload
	}

	var reasoning gjson.Result
	for _, field := range reasoningFields {
		if v := delta.Get(field); v.Exists() {
			reasoning = v
			break
		}
	}
	content := delta.Get("content")

	out := payload
	if r.display {
		if reasoning.Exists() && reasoning.String() != "" {
			text := reasoning.String() + content.String()
			if !r.reasoningOpen {
				text = constant.ThinkOpenTag + text
				r.reasoningOpen = true
			}
			out, _ = sjson.SetBytes(out, "choices.0.delta.content", text)
		} else if r.reasoningOpen && content.Exists() && content.String() != "" {
			out, _ = sjson.SetBytes(out, "choices.0.delta.content", constant.ThinkCloseTag+content.String())
			r.reasoningOpen = false
		}
	}

	for _, field := range reasoningFields {
		out, _ = sjson.DeleteBytes(out, "choices.0.delta."+field)
	}
	return out
}
