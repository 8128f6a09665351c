package voting

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voteflow/voteflow/types"
)

// VoteKeyFunc computes the canonical fingerprint that groups
// semantically equivalent sampled outputs. It must be injective with
// respect to the caller's notion of equivalence: two structured answers
// differing only in field order must produce the same key.
type VoteKeyFunc func(types.Content) (string, error)

// DefaultVoteKey hashes a canonical serialization of the content:
// trimmed text for scalars, JSON with sorted keys for structured
// content. The kind is mixed into the hash so a scalar can never
// collide with a structured answer that serializes to the same bytes.
func DefaultVoteKey(c types.Content) (string, error) {
	canonical, err := canonicalize(c)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(c types.Content) (string, error) {
	switch c.Kind {
	case types.ContentScalar:
		return "s:" + strings.TrimSpace(c.Text), nil
	case types.ContentStructured:
		// encoding/json sorts map keys, which makes the serialization
		// independent of field order.
		data, err := json.Marshal(c.Fields)
		if err != nil {
			return "", fmt.Errorf("canonicalize structured content: %w", err)
		}
		return "m:" + string(data), nil
	default:
		return "", fmt.Errorf("canonicalize: unknown content kind %q", c.Kind)
	}
}
