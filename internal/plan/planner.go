package plan

import (
	"context"
	"strings"

	"github.com/crewline/crewline/internal/llm"
	"github.com/crewline/crewline/internal/prompt"
)

// DefaultTemplate is the manager instruction used to request a breakdown.
// Role plugins may replace it under the "planner" id.
var DefaultTemplate = prompt.Template{
	Text: "You are a project manager AI. You are given a software development objective, " +
		"some context and constraints. Break the objective into a sequence of tasks " +
		"with short descriptions. Label each task with the type of agent that " +
		"should handle it: DEV for code generation, QA for testing, DOC for documentation.\n" +
		"Objective: {objective}\n" +
		"Context: {context}\n" +
		"Constraints: {constraints}\n" +
		"Return the tasks as a numbered list.",
	Temperature: 0.3,
	MaxTokens:   2048,
}

// Planner derives a Plan from an objective via the text-generation backend.
type Planner struct {
	gen         llm.Generator
	tmpl        prompt.Template
	context     string
	constraints string
}

// PlannerOption customizes a Planner.
type PlannerOption func(*Planner)

// WithTemplate replaces the manager instruction template.
func WithTemplate(tmpl prompt.Template) PlannerOption {
	return func(p *Planner) {
		p.tmpl = p.tmpl.Merge(tmpl)
	}
}

// WithContext supplies extra project context for the breakdown request.
func WithContext(context string) PlannerOption {
	return func(p *Planner) {
		p.context = context
	}
}

// WithConstraints supplies technical or business constraints.
func WithConstraints(constraints string) PlannerOption {
	return func(p *Planner) {
		p.constraints = constraints
	}
}

// NewPlanner wires a planner to the generator.
func NewPlanner(gen llm.Generator, opts ...PlannerOption) *Planner {
	planner := &Planner{gen: gen, tmpl: DefaultTemplate}
	for _, opt := range opts {
		if opt != nil {
			opt(planner)
		}
	}
	return planner
}

// Plan requests a task breakdown for the objective. It is total: backend
// outage or an unparseable reply both degrade to a plan with a single dev
// task whose description is the objective itself.
func (p *Planner) Plan(ctx context.Context, objective string) Plan {
	objective = strings.TrimSpace(objective)
	rendered := p.tmpl.Render(map[string]string{
		"objective":   objective,
		"context":     p.context,
		"constraints": p.constraints,
	})
	text, err := p.gen.Generate(ctx, llm.Request{
		Prompt:      rendered,
		Temperature: p.tmpl.Temperature,
		MaxTokens:   p.tmpl.MaxTokens,
	})
	if err != nil {
		return fallbackPlan(objective)
	}
	tasks := ParsePlanText(text)
	if len(tasks) == 0 {
		return fallbackPlan(objective)
	}
	return Plan{Objective: objective, Tasks: tasks}
}

func fallbackPlan(objective string) Plan {
	return Plan{
		Objective: objective,
		Tasks:     []Task{{Description: objective, Kind: KindDev}},
	}
}
