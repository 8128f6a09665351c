package types

import (
	"encoding/json"
	"sort"
)

// ContentKind discriminates the two content representations a sample
// can carry.
type ContentKind string

const (
	// ContentScalar is a plain string answer.
	ContentScalar ContentKind = "scalar"
	// ContentStructured is a key-value answer (e.g. an extracted record).
	ContentStructured ContentKind = "structured"
)

// Content is a tagged variant holding one sampled output. Exactly one of
// Text or Fields is meaningful, selected by Kind. Two structured contents
// that differ only in field order are considered equivalent.
type Content struct {
	Kind   ContentKind    `json:"kind"`
	Text   string         `json:"text,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// ScalarContent wraps a plain string answer.
func ScalarContent(text string) Content {
	return Content{Kind: ContentScalar, Text: text}
}

// StructuredContent wraps a key-value answer.
func StructuredContent(fields map[string]any) Content {
	return Content{Kind: ContentStructured, Fields: fields}
}

// IsZero reports whether the content carries no answer at all.
func (c Content) IsZero() bool {
	return c.Kind == "" || (c.Kind == ContentScalar && c.Text == "") ||
		(c.Kind == ContentStructured && len(c.Fields) == 0)
}

// HasField reports whether a structured content carries the named field.
// Scalar content never has fields.
func (c Content) HasField(name string) bool {
	if c.Kind != ContentStructured {
		return false
	}
	_, ok := c.Fields[name]
	return ok
}

// FieldNames returns the sorted field names of a structured content.
func (c Content) FieldNames() []string {
	if c.Kind != ContentStructured {
		return nil
	}
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the content as text: the scalar itself, or a JSON
// serialization of the fields. Used for length estimation and logging;
// not a canonical form (see voting.VoteKey for that).
func (c Content) String() string {
	switch c.Kind {
	case ContentScalar:
		return c.Text
	case ContentStructured:
		data, err := json.Marshal(c.Fields)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// AgentResponse describes one sample returned by a sampling function.
// It is created once per sample call and never mutated afterwards, except
// that the detector attaches red flags.
type AgentResponse struct {
	Content    Content        `json:"content"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	RedFlags   []RedFlag      `json:"red_flags,omitempty"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	LatencyMS  float64        `json:"latency_ms,omitempty"`
}

// Flagged reports whether the response carries any red flag. A flagged
// response never contributes a vote.
func (r *AgentResponse) Flagged() bool {
	return len(r.RedFlags) > 0
}

// HasFlag reports whether the response carries the given flag.
func (r *AgentResponse) HasFlag(flag RedFlag) bool {
	for _, f := range r.RedFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag attaches a flag, ignoring duplicates.
func (r *AgentResponse) AddFlag(flag RedFlag) {
	if r.HasFlag(flag) {
		return
	}
	r.RedFlags = append(r.RedFlags, flag)
}
