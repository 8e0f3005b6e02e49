package roles

import (
	"context"
	"strings"

	"github.com/crewline/crewline/internal/llm"
	"github.com/crewline/crewline/internal/prompt"
)

// DefaultDevTemplate is the built-in code-generation instruction.
var DefaultDevTemplate = prompt.Template{
	Text: "You are an expert software engineer. Using Python, write code that " +
		"accomplishes the following task: {task}. You can assume you have access " +
		"to standard libraries. Provide only the code without backticks.",
	Temperature: 0.1,
	MaxTokens:   2048,
}

// PlaceholderArtifact is returned when generation fails or comes back empty.
// It is a well-formed stub, not an error: callers treat it as successful
// generation with low-quality content, and QA gets to judge it like any
// other artifact.
const PlaceholderArtifact = `# TODO: implement code for task
def placeholder_function():
    raise NotImplementedError("code generation was unavailable")`

// Dev produces a code artifact for one task description.
type Dev struct {
	gen  llm.Generator
	tmpl prompt.Template
}

// NewDev wires the executor to the generator. A zero template falls back to
// the default.
func NewDev(gen llm.Generator, tmpl prompt.Template) *Dev {
	return &Dev{gen: gen, tmpl: DefaultDevTemplate.Merge(tmpl)}
}

// Build generates the artifact for the task. It never fails: backend outage
// and blank replies both yield PlaceholderArtifact.
func (d *Dev) Build(ctx context.Context, task string) string {
	rendered := d.tmpl.Render(map[string]string{"task": task})
	text, err := d.gen.Generate(ctx, llm.Request{
		Prompt:      rendered,
		Temperature: d.tmpl.Temperature,
		MaxTokens:   d.tmpl.MaxTokens,
	})
	if err != nil {
		return PlaceholderArtifact
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return PlaceholderArtifact
	}
	return text
}
