/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the convergence loop CLI. It drives an external
// code-generation agent against a requirements coverage audit until the
// audit is clean and the agent confirms there is nothing left to change,
// or until the iteration ceiling is reached.
//
// Exit codes: 0 converged, 1 ceiling reached, 2 fatal precondition.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"chainguard.dev/convergent/agent"
	"chainguard.dev/convergent/audit"
	"chainguard.dev/convergent/gate"
	"chainguard.dev/convergent/loop"
	"chainguard.dev/convergent/preflight"
	"chainguard.dev/convergent/prompt"
	"chainguard.dev/convergent/transcript"
	"chainguard.dev/convergent/worktree"
	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	// Agent invocation
	AgentBin       string `env:"AGENT_BIN,default=claude"`
	AgentArgs      string `env:"AGENT_ARGS,default=-p"`
	PermissionMode string `env:"PERMISSION_MODE,default=acceptEdits"`

	// External commands, split on whitespace
	AuditCommand string `env:"AUDIT_CMD,default=prdaudit"`
	TestCommand  string `env:"TEST_CMD,default=pytest -q"`

	// Project documents, relative to the working directory
	SpecPath  string `env:"SPEC_PATH,default=PRD/product_prd.md"`
	RulesPath string `env:"RULES_PATH,default=CLAUDE.md"`

	// Directories the change detector watches
	ScopeDirs []string `env:"SCOPE_DIRS,default=src\\,tests"`

	MaxLoops   int    `env:"MAX_LOOPS,default=5"`
	Workdir    string `env:"WORKDIR"`
	Transcript string `env:"TRANSCRIPT"`
	Verbose    bool   `env:"VERBOSE,default=false"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A local .env supplies overrides during development; absence is fine.
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	ctx = clog.WithLogger(ctx, clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	result, err := run(ctx, &cfg)
	if err != nil {
		clog.ErrorContextf(ctx, "%v", err)
		result = loop.Result{Outcome: loop.FatalPrecondition, Message: err.Error()}
	}
	clog.InfoContextf(ctx, "%s after %d iteration(s): %s",
		result.Outcome, result.Iterations, result.Message)
	os.Exit(result.ExitCode())
}

func run(ctx context.Context, cfg *config) (loop.Result, error) {
	workdir := cfg.Workdir
	if workdir == "" {
		workdir = "."
	}
	auditArgv := strings.Fields(cfg.AuditCommand)
	testArgv := strings.Fields(cfg.TestCommand)
	if len(auditArgv) == 0 || len(testArgv) == 0 {
		return loop.Result{}, errors.New("AUDIT_CMD and TEST_CMD must not be empty")
	}
	specPath := filepath.Join(workdir, cfg.SpecPath)
	rulesPath := filepath.Join(workdir, cfg.RulesPath)

	// The self-check comes first: refuse to run on damaged instruction
	// templates before touching any external collaborator.
	if err := preflight.CheckIntegrity(prompt.TemplateSources()); err != nil {
		return loop.Result{}, err
	}
	// Then everything else that can make a run pointless, before the
	// first iteration spends an agent call.
	if err := preflight.Check(ctx, preflight.Requirements{
		Executables: []string{cfg.AgentBin, auditArgv[0], testArgv[0]},
		Files:       []string{specPath, rulesPath},
	}); err != nil {
		return loop.Result{}, err
	}
	for _, doc := range []string{rulesPath, specPath} {
		if err := preflight.CheckIntegrityFile(doc); err != nil {
			return loop.Result{}, err
		}
	}

	auditor, err := audit.NewRunner(cfg.AuditCommand, audit.WithDir(workdir))
	if err != nil {
		return loop.Result{}, err
	}
	builder, err := prompt.NewBuilder(
		prompt.WithSpecPath(cfg.SpecPath),
		prompt.WithRulesPath(cfg.RulesPath),
	)
	if err != nil {
		return loop.Result{}, err
	}
	invoker, err := agent.New(cfg.AgentBin,
		agent.WithArgs(strings.Fields(cfg.AgentArgs)...),
		agent.WithPermissionMode(cfg.PermissionMode),
		agent.WithDir(workdir),
	)
	if err != nil {
		return loop.Result{}, err
	}
	detector, err := worktree.NewDetector(workdir, cfg.ScopeDirs)
	if err != nil {
		return loop.Result{}, err
	}
	testGate, err := gate.New(cfg.TestCommand, gate.WithDir(workdir))
	if err != nil {
		return loop.Result{}, err
	}

	recorder := transcript.Recorder(transcript.Log{})
	if cfg.Transcript != "" {
		f, err := os.OpenFile(cfg.Transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return loop.Result{}, &preflight.FatalError{Resource: cfg.Transcript, Err: err}
		}
		defer f.Close()
		recorder = transcript.Multi(transcript.Log{}, transcript.NewJSONL(f))
	}
	ctx = transcript.WithRecorder(ctx, recorder)

	controller, err := loop.New(loop.Deps{
		Auditor:  auditor,
		Prompts:  builder,
		Agent:    invoker,
		Detector: detectorAdapter{detector},
		Gate:     testGate,
	}, loop.WithMaxLoops(cfg.MaxLoops))
	if err != nil {
		return loop.Result{}, err
	}

	clog.InfoContextf(ctx, "starting convergence loop: agent=%s audit=%q tests=%q max_loops=%d",
		cfg.AgentBin, cfg.AuditCommand, cfg.TestCommand, cfg.MaxLoops)
	return controller.Run(ctx)
}

// detectorAdapter narrows the concrete checkpoint type to the loop's
// interface.
type detectorAdapter struct {
	d *worktree.Detector
}

func (a detectorAdapter) Snapshot(ctx context.Context) (loop.Checkpoint, error) {
	return a.d.Snapshot(ctx)
}
