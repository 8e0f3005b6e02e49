package roles

import (
	"context"
	"strings"

	"github.com/crewline/crewline/internal/llm"
	"github.com/crewline/crewline/internal/prompt"
)

// DefaultDocTemplate is the built-in documentation instruction.
var DefaultDocTemplate = prompt.Template{
	Text: "You are a technical writer AI. You are given a list of changes and some context. " +
		"Write succinct documentation: a README update summarising the changes, a Markdown " +
		"changelog entry, and a concise commit message. Separate the three sections with " +
		"\"---\" lines.\n" +
		"Changes:\n{changes}\n" +
		"Context: {context}\n" +
		"Use clear language and avoid redundancy.",
	Temperature: 0.2,
	MaxTokens:   2048,
}

// docFallbackMessage fills all three fields when generation fails.
const docFallbackMessage = "Updated code based on the latest task."

// DocSet is the documentation produced for one run.
type DocSet struct {
	ReadmeUpdate  string
	ChangelogMD   string
	CommitMessage string
}

// Doc synthesizes documentation from the run's changelog.
type Doc struct {
	gen  llm.Generator
	tmpl prompt.Template
}

// NewDoc wires the executor to the generator.
func NewDoc(gen llm.Generator, tmpl prompt.Template) *Doc {
	return &Doc{gen: gen, tmpl: DefaultDocTemplate.Merge(tmpl)}
}

// Summarize turns the ordered changelog into a readme update, a changelog
// entry, and a commit message. The reply is split on "---" delimiters;
// missing sections come back empty, and a backend outage yields a fixed
// generic message in every field.
func (d *Doc) Summarize(ctx context.Context, changelog []string, runContext string) DocSet {
	rendered := d.tmpl.Render(map[string]string{
		"changes": strings.Join(changelog, "\n"),
		"context": runContext,
	})
	text, err := d.gen.Generate(ctx, llm.Request{
		Prompt:      rendered,
		Temperature: d.tmpl.Temperature,
		MaxTokens:   d.tmpl.MaxTokens,
	})
	if err != nil {
		return DocSet{
			ReadmeUpdate:  docFallbackMessage,
			ChangelogMD:   "* " + docFallbackMessage,
			CommitMessage: docFallbackMessage,
		}
	}
	sections := strings.Split(text, "---")
	set := DocSet{}
	if len(sections) > 0 {
		set.ReadmeUpdate = strings.TrimSpace(sections[0])
	}
	if len(sections) > 1 {
		set.ChangelogMD = strings.TrimSpace(sections[1])
	}
	if len(sections) > 2 {
		set.CommitMessage = strings.TrimSpace(sections[2])
	}
	return set
}
