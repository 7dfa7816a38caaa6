package translator

import (
	"bytes"
	"testing"

	"github.com/tidwall/gjson"
)

func TestStreamRewriter_ReasoningThenContent(t *testing.T) {
	rewriter := NewStreamRewriter(true)

	out := rewriter.Rewrite([]byte(`{"choices":[{"delta":{"reasoning_content":"let me think"}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "<think>let me think" {
		t.Errorf("first reasoning delta content = %q, want opening marker prefix", got)
	}
	if gjson.GetBytes(out, "choices.0.delta.reasoning_content").Exists() {
		t.Error("reasoning_content must be removed from the re-serialized event")
	}

	out = rewriter.Rewrite([]byte(`{"choices":[{"delta":{"reasoning_content":" harder"}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != " harder" {
		t.Errorf("subsequent reasoning delta content = %q, want no repeated marker", got)
	}

	out = rewriter.Rewrite([]byte(`{"choices":[{"delta":{"content":"The answer is 42."}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "</think>The answer is 42." {
		t.Errorf("first content delta = %q, want closing marker prefix", got)
	}

	out = rewriter.Rewrite([]byte(`{"choices":[{"delta":{"content":" More."}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != " More." {
		t.Errorf("later content delta = %q, want no marker", got)
	}
}

func TestStreamRewriter_ReasoningFieldVariant(t *testing.T) {
	rewriter := NewStreamRewriter(true)

	out := rewriter.Rewrite([]byte(`{"choices":[{"delta":{"reasoning":"hmm"}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "<think>hmm" {
		t.Errorf("content = %q, want marker-prefixed reasoning", got)
	}
	if gjson.GetBytes(out, "choices.0.delta.reasoning").Exists() {
		t.Error("reasoning must be removed from the re-serialized event")
	}
}

func TestStreamRewriter_MalformedPayloadForwardedUnchanged(t *testing.T) {
	rewriter := NewStreamRewriter(true)

	malformed := []byte(`{"choices":[{"delta":`)
	out := rewriter.Rewrite(malformed)
	if !bytes.Equal(out, malformed) {
		t.Errorf("malformed payload rewritten: got %q, want %q", out, malformed)
	}

	// The stream keeps going afterwards.
	out = rewriter.Rewrite([]byte(`{"choices":[{"delta":{"content":"still here"}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "still here" {
		t.Errorf("content after malformed frame = %q", got)
	}
}

func TestStreamRewriter_DisplayDisabledStripsReasoning(t *testing.T) {
	rewriter := NewStreamRewriter(false)

	out := rewriter.Rewrite([]byte(`{"choices":[{"delta":{"reasoning_content":"secret","content":""}}]}`))
	if gjson.GetBytes(out, "choices.0.delta.reasoning_content").Exists() {
		t.Error("reasoning_content must be stripped when display is disabled")
	}
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "" {
		t.Errorf("content = %q, want untouched empty content", got)
	}

	out = rewriter.Rewrite([]byte(`{"choices":[{"delta":{"content":"plain"}}]}`))
	if got := gjson.GetBytes(out, "choices.0.delta.content").String(); got != "plain" {
		t.Errorf("content = %q, want no markers when display is disabled", got)
	}
}

func TestStreamRewriter_NonDeltaPayloadUntouched(t *testing.T) {
	rewriter := NewStreamRewriter(true)

	payload := []byte(`{"object":"chat.completion.chunk","usage":{"total_tokens":7}}`)
	out := rewriter.Rewrite(payload)
	if !bytes.Equal(out, payload) {
		t.Errorf("payload without delta rewritten: got %q", out)
	}
}
