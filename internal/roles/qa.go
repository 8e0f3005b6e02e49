package roles

import (
	"context"
	"strings"

	"github.com/crewline/crewline/internal/llm"
	"github.com/crewline/crewline/internal/prompt"
)

// DefaultQATemplate is the built-in verification instruction.
var DefaultQATemplate = prompt.Template{
	Text: "You are a quality assurance AI. Review the following work against the task " +
		"it was meant to accomplish.\n" +
		"Task: {task}\n" +
		"Work:\n{artifact}\n" +
		"Reply with PASS or FAIL as the first word, followed by your feedback.",
	Temperature: 0.2,
	MaxTokens:   2048,
}

// Fallback feedback strings, recorded verbatim in the action log.
const (
	qaUnavailableOpenFeedback   = "qa unavailable, defaulting to pass"
	qaUnavailableClosedFeedback = "qa unavailable, failing closed"
)

// Verdict is the outcome of one QA check.
type Verdict struct {
	Passed   bool
	Feedback string
}

// QA verifies an artifact (or a standalone task) and gates pipeline
// progress. Judgment is delegated to generated text; the executor only
// parses the leading pass/fail token.
type QA struct {
	gen        llm.Generator
	tmpl       prompt.Template
	failClosed bool
}

// NewQA wires the executor to the generator. failClosed flips the outage
// fallback from pass to fail.
func NewQA(gen llm.Generator, tmpl prompt.Template, failClosed bool) *QA {
	return &QA{gen: gen, tmpl: DefaultQATemplate.Merge(tmpl), failClosed: failClosed}
}

// FailMode names the configured outage fallback for audit records.
func (q *QA) FailMode() string {
	if q.failClosed {
		return "closed"
	}
	return "open"
}

// Check verifies artifact against task. A standalone verification task
// passes an empty artifact; the template renders it as-is.
//
// The reply's first word decides the verdict: "fail" fails, anything else
// passes (the generator is untrusted, so an unparseable reply biases toward
// progress the same way an outage does in fail-open mode).
func (q *QA) Check(ctx context.Context, artifact, task string) Verdict {
	rendered := q.tmpl.Render(map[string]string{"task": task, "artifact": artifact})
	text, err := q.gen.Generate(ctx, llm.Request{
		Prompt:      rendered,
		Temperature: q.tmpl.Temperature,
		MaxTokens:   q.tmpl.MaxTokens,
	})
	if err != nil {
		if q.failClosed {
			return Verdict{Passed: false, Feedback: qaUnavailableClosedFeedback}
		}
		return Verdict{Passed: true, Feedback: qaUnavailableOpenFeedback}
	}
	return parseVerdict(text)
}

func parseVerdict(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return Verdict{Passed: true, Feedback: ""}
	}
	token := strings.ToLower(strings.Trim(fields[0], ":.,!"))
	feedback := strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0]))
	feedback = strings.TrimLeft(feedback, ":., ")
	if token == "fail" || token == "failed" {
		return Verdict{Passed: false, Feedback: feedback}
	}
	if token != "pass" && token != "passed" {
		// Unrecognized leading token: keep the whole reply as feedback.
		feedback = trimmed
	}
	return Verdict{Passed: true, Feedback: feedback}
}
