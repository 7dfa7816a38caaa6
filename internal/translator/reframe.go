// Package translator reshapes upstream responses into the OpenAI-compatible
// form the relay presents to clients. It contains the SSE line reassembly
// buffer, the streaming reasoning rewriter, and the non-streaming response
// shaper. All JSON manipulation is done with gjson/sjson on raw bytes; wire
// payloads are never decoded into intermediate structs.
package translator

import "bytes"

// LineBuffer reassembles newline-delimited SSE lines from arbitrarily split
// network chunks. The upstream stream is not guaranteed to deliver one event
// per read, so the buffer accumulates bytes across Feed calls and holds back
// the trailing incomplete fragment until its newline arrives.
//
// A LineBuffer is per-connection state and must not be shared.
type LineBuffer struct {
	rest []byte
}

// Feed appends a chunk to the buffer and returns every complete line it now
// contains, in order. Returned lines have the trailing newline and optional
// carriage return removed and do not alias the internal buffer.
func (b *LineBuffer) Feed(chunk []byte) [][]byte {
	b.rest = append(b.rest, chunk...)

	var lines [][]byte
	for {
		idx := bytes.IndexByte(b.rest, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSuffix(b.rest[:idx], []byte{'\r'})
		lines = append(lines, append([]byte(nil), line...))
		b.rest = b.rest[idx+1:]
	}

	if len(b.rest) == 0 {
		b.rest = nil
	}
	return lines
}

// Rest returns the held-back incomplete fragment, if any. Useful when the
// upstream closes without a final newline.
func (b *LineBuffer) Rest() []byte {
	return b.rest
}

var (
	dataTag = []byte("data: ")
	// Some providers omit the space after the colon.
	dataBareTag = []byte("data:")
	doneMarker  = []byte("[DONE]")
)

// ExtractData returns the payload of an SSE data line. Lines without the
// data prefix are not SSE events and are reported as not ok so callers can
// discard them.
func ExtractData(line []byte) (payload []byte, ok bool) {
	switch {
	case bytes.HasPrefix(line, dataTag):
		return line[len(dataTag):], true
	case bytes.HasPrefix(line, dataBareTag):
		return line[len(dataBareTag):], true
	default:
		return nil, false
	}
}

// IsDone reports whether an SSE payload is the stream termination marker.
func IsDone(payload []byte) bool {
	return bytes.Equal(bytes.TrimSpace(payload), doneMarker)
}
