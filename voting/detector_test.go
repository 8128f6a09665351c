package voting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voteflow/voteflow/types"
)

func TestDetectConfidenceTooLow(t *testing.T) {
	d := NewDetector(types.RedFlagConfig{MinConfidence: 0.3}, nil, nil)

	resp := &types.AgentResponse{Content: types.ScalarContent("ok"), Confidence: 0.1}
	flags := d.Detect(resp)

	assert.Contains(t, flags, types.FlagConfidenceTooLow)
	assert.True(t, resp.HasFlag(types.FlagConfidenceTooLow))

	resp = &types.AgentResponse{Content: types.ScalarContent("ok"), Confidence: 0.5}
	assert.Empty(t, d.Detect(resp))
}

func TestDetectExcessiveLength(t *testing.T) {
	d := NewDetector(types.RedFlagConfig{MaxTokens: 500, MinConfidence: 0}, nil, nil)

	// ~3000 ASCII characters estimate to ~750 tokens.
	long := &types.AgentResponse{
		Content:    types.ScalarContent(strings.Repeat("a", 3000)),
		Confidence: 0.9,
	}
	assert.Contains(t, d.Detect(long), types.FlagExcessiveLength)

	short := &types.AgentResponse{
		Content:    types.ScalarContent("short answer"),
		Confidence: 0.9,
	}
	assert.Empty(t, d.Detect(short))
}

func TestDetectMissingRequiredFields(t *testing.T) {
	d := NewDetector(types.RedFlagConfig{RequiredFields: []string{"title", "year"}}, nil, nil)

	tests := []struct {
		name    string
		content types.Content
		flagged bool
	}{
		{
			name:    "all fields present",
			content: types.StructuredContent(map[string]any{"title": "x", "year": 2024}),
			flagged: false,
		},
		{
			name:    "one field absent",
			content: types.StructuredContent(map[string]any{"title": "x"}),
			flagged: true,
		},
		{
			name:    "scalar content is not checked",
			content: types.ScalarContent("free text"),
			flagged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &types.AgentResponse{Content: tt.content, Confidence: 0.9}
			flags := d.Detect(resp)
			if tt.flagged {
				assert.Contains(t, flags, types.FlagMissingRequiredFields)
			} else {
				assert.NotContains(t, flags, types.FlagMissingRequiredFields)
			}
		})
	}
}

func TestDetectMethodologyCreep(t *testing.T) {
	creep := KeywordCreepPredicate([]string{"p-value", "ANOVA"})
	d := NewDetector(types.RedFlagConfig{Creep: creep}, nil, nil)

	resp := &types.AgentResponse{
		Content:    types.ScalarContent("the anova results show a p-value of 0.03"),
		Confidence: 0.9,
	}
	assert.Contains(t, d.Detect(resp), types.FlagMethodologyCreep)

	resp = &types.AgentResponse{
		Content:    types.ScalarContent("apples, pears, plums"),
		Confidence: 0.9,
	}
	assert.Empty(t, d.Detect(resp))
}

func TestDetectMultipleFlagsSimultaneously(t *testing.T) {
	d := NewDetector(types.RedFlagConfig{
		MaxTokens:      10,
		MinConfidence:  0.5,
		RequiredFields: []string{"answer"},
	}, nil, nil)

	resp := &types.AgentResponse{
		Content:    types.StructuredContent(map[string]any{"noise": strings.Repeat("x", 400)}),
		Confidence: 0.2,
	}
	flags := d.Detect(resp)

	assert.Contains(t, flags, types.FlagExcessiveLength)
	assert.Contains(t, flags, types.FlagConfidenceTooLow)
	assert.Contains(t, flags, types.FlagMissingRequiredFields)
	// FormatError is never computed by the detector.
	assert.NotContains(t, flags, types.FlagFormatError)
}

func TestDetectZeroMaxTokensDisablesLengthCheck(t *testing.T) {
	d := NewDetector(types.RedFlagConfig{}, nil, nil)
	resp := &types.AgentResponse{
		Content:    types.ScalarContent(strings.Repeat("a", 100000)),
		Confidence: 0.9,
	}
	assert.NotContains(t, d.Detect(resp), types.FlagExcessiveLength)
}
