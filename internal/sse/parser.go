// Package sse implements a line-based Server-Sent Events parser:
// frames a byte stream into discrete events (event, data, id fields),
// handling partial frames, CRLF/LF line endings, multi-line data, and
// buffer compaction for long-lived streams.
package sse

import (
	"bytes"
	"strings"
)

// compactThreshold is the absolute consumed-byte floor below which the
// parser never bothers compacting, even if more than half the buffer
// has been consumed. Mirrors the reference implementation's 4 KiB
// constant: bounds memory for long-lived streams without paying a
// slice-shift cost on every tiny event.
const compactThreshold = 4096

// Event is one parsed SSE event: an optional event type, concatenated
// data, and an optional id.
type Event struct {
	Event string
	Data  string
	ID    string
}

// Parser frames a byte stream into Events. Feed bytes with Feed, then
// drain as many events as are ready with Next. Next returns ok=false
// when no complete (blank-line-terminated) event is buffered yet; the
// caller should Feed more bytes and try again.
type Parser struct {
	buf      []byte
	consumed int
}

// New creates a Parser with a default initial buffer capacity.
func New() *Parser {
	return NewWithCapacity(8192)
}

// NewWithCapacity creates a Parser that pre-allocates cap bytes of buffer.
func NewWithCapacity(cap int) *Parser {
	return &Parser{buf: make([]byte, 0, cap)}
}

// Feed appends data to the parser's internal buffer. The buffer is
// compacted first if the consumed prefix exceeds both half the
// buffer and the absolute compactThreshold.
func (p *Parser) Feed(data []byte) {
	if p.consumed > len(p.buf)/2 && p.consumed > compactThreshold {
		p.compact()
	}
	p.buf = append(p.buf, data...)
}

func (p *Parser) compact() {
	if p.consumed == 0 {
		return
	}
	p.buf = append(p.buf[:0], p.buf[p.consumed:]...)
	p.consumed = 0
}

// Next tries to parse the next complete event from buffered bytes.
// ok is false when a full (blank-line-terminated) event isn't
// buffered yet — more data is needed. An event with no data field is
// discarded per the SSE spec, and Next recurses to look for the next
// one without the caller needing to loop.
func (p *Parser) Next() (ev Event, ok bool) {
	buf := p.buf[p.consumed:]

	var dataLines []string
	var eventType, id string
	pos := 0
	foundBlank := false
	eventEnd := 0

	for pos < len(buf) {
		nl := bytes.IndexByte(buf[pos:], '\n')
		if nl < 0 {
			return Event{}, false
		}
		lineEnd := pos + nl
		line := buf[pos:lineEnd]
		line = bytes.TrimSuffix(line, []byte("\r"))

		if len(line) == 0 {
			foundBlank = true
			eventEnd = lineEnd + 1
			break
		}

		if colon := bytes.IndexByte(line, ':'); colon >= 0 {
			field := line[:colon]
			valueStart := colon + 1
			if valueStart < len(line) && line[valueStart] == ' ' {
				valueStart++
			}
			value := line[valueStart:]
			// SSE requires field values to be UTF-8; a non-UTF-8 value
			// is skipped for that field only, not treated as fatal.
			if strVal := string(value); strings.ToValidUTF8(strVal, "") == strVal {
				switch string(field) {
				case "data":
					dataLines = append(dataLines, strVal)
				case "event":
					eventType = strVal
				case "id":
					id = strVal
				default:
					// unknown fields are silently discarded
				}
			}
		}
		// A line starting with ':' matches above with an empty field
		// name, which the default case discards: an ignored comment.

		pos = lineEnd + 1
	}

	if !foundBlank {
		return Event{}, false
	}

	p.consumed += eventEnd

	if len(dataLines) == 0 {
		return p.Next()
	}

	return Event{Event: eventType, Data: strings.Join(dataLines, "\n"), ID: id}, true
}

// IsDone reports whether data is the "[DONE]" sentinel some providers
// use to terminate a stream. The parser itself has no opinion on
// payload contents; this is a convenience for adapters that need it.
func IsDone(data string) bool {
	return data == "[DONE]"
}

// Reset clears all parser state so it can be reused for a new stream.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
	p.consumed = 0
}

// BufferLen returns the number of unconsumed bytes currently buffered.
func (p *Parser) BufferLen() int {
	return len(p.buf) - p.consumed
}
