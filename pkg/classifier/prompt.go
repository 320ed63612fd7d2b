package classifier

import "strings"

// DefaultPromptTemplate is the built-in instruction. {labels} and {text} are
// substituted at render time.
const DefaultPromptTemplate = `You are a text classification system. Classify the following text into exactly one of these categories: {labels}

Classification Rules:
- Complaint: Expresses dissatisfaction, problems, or negative experiences
- Inquiry: Asks questions, seeks information, or requests clarification
- Feedback: Provides suggestions, opinions, or general comments (positive or constructive)
- Other: Does not fit into the above categories

Text to classify: "{text}"

Respond with a JSON object containing:
1. "label": The exact category name (must match one of: {labels})
2. "confidence": A number between 0.0 and 1.0 indicating classification confidence
3. "rationale": A brief explanation (1-2 sentences) of why this classification was chosen

Response format (JSON only, no additional text):`

// systemInstruction carries the output contract regardless of the template.
const systemInstruction = `You are a precise text classification assistant. Always respond with valid JSON only: a single object with exactly three keys, "label", "confidence" and "rationale".`

// PromptTemplate renders classification prompts from a template holding the
// {labels} and {text} slots. Doubled braces render as single literal braces.
type PromptTemplate struct {
	template string
}

// NewPromptTemplate returns a template for tmpl, or the default template when
// tmpl is blank.
func NewPromptTemplate(tmpl string) PromptTemplate {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultPromptTemplate
	}
	return PromptTemplate{template: tmpl}
}

// String returns the raw template text.
func (t PromptTemplate) String() string { return t.template }

// Render substitutes the comma-joined labels and the verbatim text. The
// replacement is a single left-to-right pass, so slot markers inside text are
// left as they are.
func (t PromptTemplate) Render(labels []string, text string) string {
	tmpl := t.template
	if tmpl == "" {
		tmpl = DefaultPromptTemplate
	}
	r := strings.NewReplacer(
		"{{", "{",
		"}}", "}",
		"{labels}", strings.Join(labels, ", "),
		"{text}", text,
	)
	return r.Replace(tmpl)
}
