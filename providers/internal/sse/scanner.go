// Package sse provides incremental framing of server-sent-event byte streams.
//
// A Scanner consumes raw byte fragments whose sizes and boundaries are
// unpredictable: one logical event may be split across fragments, one
// fragment may contain several events, and a boundary may fall inside a
// multi-byte character or mid-payload. The Scanner buffers bytes and only
// ever interprets complete newline-terminated lines, so partial-line
// buffering is the sole correctness mechanism.
package sse

import "bytes"

// doneSentinel is the payload value signaling end of stream.
const doneSentinel = "[DONE]"

// Scanner extracts data-record payloads from an SSE byte stream.
// The zero value is ready to use. Scanner is not safe for concurrent use;
// feed it from a single goroutine in stream arrival order.
type Scanner struct {
	buf  []byte
	done bool
}

// Feed appends a raw fragment and returns the payloads of every complete
// data record now available, in order. Blank lines, comment lines, and
// non-data fields are skipped. After the terminal sentinel has been seen,
// Feed consumes no further input and returns nil; feeding the sentinel
// again has no effect.
//
// Empty fragments are ignored. The returned slices alias internal storage
// only until the next Feed call; callers that retain payloads must copy.
func (s *Scanner) Feed(p []byte) [][]byte {
	if s.done || len(p) == 0 {
		return nil
	}
	s.buf = append(s.buf, p...)

	var payloads [][]byte
	for !s.done {
		idx := bytes.IndexByte(s.buf, '\n')
		if idx < 0 {
			break
		}
		line := s.buf[:idx]
		s.buf = s.buf[idx+1:]

		if payload, ok := s.parseLine(line); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// Flush processes any buffered trailing line that was never
// newline-terminated. Call it once at end of input; end of input without a
// prior sentinel is treated as an implicit end of stream.
func (s *Scanner) Flush() [][]byte {
	if s.done || len(s.buf) == 0 {
		return nil
	}
	line := s.buf
	s.buf = nil

	if payload, ok := s.parseLine(line); ok {
		return [][]byte{payload}
	}
	return nil
}

// Done reports whether the terminal sentinel has been seen.
func (s *Scanner) Done() bool {
	return s.done
}

// parseLine interprets one complete line, returning the data payload if the
// line is a non-terminal data record.
func (s *Scanner) parseLine(line []byte) ([]byte, bool) {
	line = bytes.TrimRight(line, "\r")
	line = bytes.TrimSpace(line)

	// Blank lines are event separators; lines starting with ':' are
	// comments (often keep-alives). Both carry no payload.
	if len(line) == 0 || line[0] == ':' {
		return nil, false
	}

	// Only data fields carry payload; event/id/retry fields are skipped.
	payload, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		return nil, false
	}
	payload = bytes.TrimSpace(payload)

	if string(payload) == doneSentinel {
		s.done = true
		return nil, false
	}
	return payload, true
}
