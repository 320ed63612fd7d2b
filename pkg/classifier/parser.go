package classifier

import (
	"encoding/json"
	"strings"
)

const codeFence = "```"

// Parsed is a validated model answer.
type Parsed struct {
	Label      string
	Confidence *float64
	Rationale  *string
}

// ResponseParser turns raw model output into a Parsed value checked against a
// LabelSet.
type ResponseParser struct {
	labels LabelSet
}

// NewResponseParser returns a parser validating against labels.
func NewResponseParser(labels LabelSet) ResponseParser {
	return ResponseParser{labels: labels}
}

type rawAnswer struct {
	Label      *string  `json:"label"`
	Confidence *float64 `json:"confidence"`
	Rationale  *string  `json:"rationale"`
}

// Parse normalizes, decodes and validates raw. Errors are always *ParseError.
func (p ResponseParser) Parse(raw string) (Parsed, error) {
	content := normalizeResponse(raw)

	var answer rawAnswer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return Parsed{}, &ParseError{Kind: MalformedPayload, Err: err}
	}
	if answer.Label == nil {
		return Parsed{}, &ParseError{Kind: MissingLabel}
	}

	label, ok := p.labels.Canonical(*answer.Label)
	if !ok {
		return Parsed{}, &ParseError{Kind: UnknownLabel, Label: *answer.Label, Allowed: p.labels.Labels()}
	}

	return Parsed{
		Label:      label,
		Confidence: answer.Confidence,
		Rationale:  answer.Rationale,
	}, nil
}

// normalizeResponse trims whitespace and strips a surrounding markdown code
// fence, optionally tagged json.
func normalizeResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, codeFence) {
		s = s[len(codeFence):]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSuffix(s, codeFence)
	return strings.TrimSpace(s)
}
