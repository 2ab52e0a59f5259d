package types

// ChunkKind classifies a StreamChunk's payload.
type ChunkKind string

const (
	ChunkText      ChunkKind = "text"
	ChunkUsageOnly ChunkKind = "usage-only"
	ChunkToolDelta ChunkKind = "tool-delta"
	ChunkThinking  ChunkKind = "thinking"
	ChunkPing      ChunkKind = "ping"
	ChunkUnknown   ChunkKind = "unknown"
)

// StreamChunk is a typed frame carrying at most one primary payload
// (text fragment or tool-call delta). Any chunk may also carry a usage
// update and a terminal finish reason alongside it.
//
// Chunks are produced by an adapter's event decoder and consumed by
// value by the aggregator and the caller; they are never shared or
// mutated after being returned. Unlike the reference implementation's
// zero-copy-capable text representation, text here is always an owned
// Go string — all public contracts in this client are defined in
// terms of owned strings, and a byte-offset view into the SSE buffer
// would outlive the buffer's own reuse across events.
type StreamChunk struct {
	Kind         ChunkKind
	text         string
	FinishReason FinishReason
	HasFinish    bool
	Usage        Usage
	HasUsage     bool
	ToolCallDelta *ToolCallDelta
}

// EmptyChunk creates a chunk with no text, usage, or finish reason.
func EmptyChunk(kind ChunkKind) StreamChunk {
	return StreamChunk{Kind: kind}
}

// TextChunk creates a text chunk. An empty fragment collapses to a
// chunk with no text, matching the reference implementation's
// TextData::Empty handling of zero-length deltas.
func TextChunk(text string) StreamChunk {
	if text == "" {
		return StreamChunk{Kind: ChunkText}
	}
	return StreamChunk{Kind: ChunkText, text: text}
}

// UsageChunk creates a usage-only chunk.
func UsageChunk(u Usage) StreamChunk {
	return StreamChunk{Kind: ChunkUsageOnly, Usage: u, HasUsage: true}
}

// Text returns the chunk's text fragment, or "" if none.
func (c StreamChunk) Text() string {
	return c.text
}

// WithFinishReason returns a copy of c with the finish reason set.
func (c StreamChunk) WithFinishReason(r FinishReason) StreamChunk {
	c.FinishReason = r
	c.HasFinish = true
	return c
}

// WithUsage returns a copy of c with usage set.
func (c StreamChunk) WithUsage(u Usage) StreamChunk {
	c.Usage = u
	c.HasUsage = true
	return c
}
