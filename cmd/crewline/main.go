// cmd/crewline/main.go
//
// This is the entry point for the crewline CLI.
// Run `crewline <objective>` from a project directory and the pipeline
// plans the objective, executes each task through the role executors, and
// prints the final report.
//
// Flow:
// 1. Initialize the .crewline directory in the current project
// 2. Load configuration (file, then environment overrides)
// 3. Wire the generation client, action log, and role executors
// 4. Run the pipeline once and exit with its terminal status
//
// Exit codes: 0 run completed, 1 run aborted, 2 initialization error.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/crewline/crewline/internal/actionlog"
	"github.com/crewline/crewline/internal/config"
	"github.com/crewline/crewline/internal/event"
	"github.com/crewline/crewline/internal/llm"
	"github.com/crewline/crewline/internal/logging"
	"github.com/crewline/crewline/internal/pipeline"
	"github.com/crewline/crewline/internal/plan"
	"github.com/crewline/crewline/internal/roles"
	"github.com/crewline/crewline/internal/tui"
	"github.com/crewline/crewline/plugins"
)

const (
	exitCompleted = 0
	exitAborted   = 1
	exitInitError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	useTUI := flag.Bool("tui", false, "render run progress in a terminal view")
	runContext := flag.String("context", "", "extra project context for planning and documentation")
	constraints := flag.String("constraints", "", "constraints passed to the planner")
	flag.Parse()

	objective := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if objective == "" {
		fmt.Fprintln(os.Stderr, "usage: crewline [flags] <objective>")
		flag.PrintDefaults()
		return exitInitError
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		return exitInitError
	}

	if err := config.InitDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .crewline directory: %v\n", err)
		return exitInitError
	}
	cfg, err := config.New(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return exitInitError
	}

	logger, err := logging.New(cfg.LogsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run log: %v\n", err)
		return exitInitError
	}
	defer logger.Close()

	actions, err := actionlog.New(cfg.ActionsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening action log: %v\n", err)
		return exitInitError
	}

	client := llm.NewClient(llm.ClientOptions{
		BaseURLs: cfg.Project.LLM.BaseURL,
		Model:    cfg.Project.LLM.Model,
		APIKey:   cfg.Project.LLM.APIKey,
		Timeout:  cfg.Project.LLM.Timeout(),
		Guard:    llm.NewGuard(cfg.Project.LLM.MaxFailures, cfg.Project.LLM.Cooldown()),
	})

	set := roles.TemplateSet{
		Planner: plan.DefaultTemplate,
		Dev:     roles.DefaultDevTemplate,
		QA:      roles.DefaultQATemplate,
		Doc:     roles.DefaultDocTemplate,
	}
	set, err = plugins.LoadRoleOverrides(cfg, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading role definitions: %v\n", err)
		return exitInitError
	}

	planner := plan.NewPlanner(client,
		plan.WithTemplate(set.Planner),
		plan.WithContext(*runContext),
		plan.WithConstraints(*constraints),
	)
	dev := roles.NewDev(client, set.Dev)
	qa := roles.NewQA(client, set.QA, cfg.Project.QA.FailClosed)
	doc := roles.NewDoc(client, set.Doc)

	router := event.NewRouter(event.RouterWithLogger(logger))
	runID := uuid.NewString()
	pipe := pipeline.New(planner, dev, qa, doc,
		pipeline.WithActionLog(actions),
		pipeline.WithLogger(logger),
		pipeline.WithRouter(router),
		pipeline.WithContext(*runContext),
		pipeline.WithRunID(func() string { return runID }),
	)

	logger.Printf("crewline: run %s objective: %s", runID, objective)

	var result pipeline.Result
	if *useTUI {
		sub := router.Subscribe(runID)
		defer sub.Close()
		app := tui.NewApp(objective, func(ctx context.Context) pipeline.Result {
			return pipe.Run(ctx, objective)
		}, sub.Events)
		final, err := tui.Run(app)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running terminal view: %v\n", err)
			return exitInitError
		}
		if final.Result() == nil {
			fmt.Fprintln(os.Stderr, "Run interrupted before completion.")
			return exitAborted
		}
		result = *final.Result()
		fmt.Println(result.Report())
	} else {
		fmt.Printf("Incoming task: %s\n", objective)
		result = pipe.Run(context.Background(), objective)
		fmt.Println("=== Result ===")
		fmt.Println(result.Report())
	}

	if result.Status == pipeline.StatusAborted {
		return exitAborted
	}
	return exitCompleted
}
