// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for flowdesk.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/morganforge/flowdesk/internal/commands"
	"github.com/morganforge/flowdesk/internal/config"
	"github.com/morganforge/flowdesk/internal/ui/palette"
	"github.com/morganforge/flowdesk/internal/ui/styles"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdREPL Command = iota
	CmdParse
	CmdLint
	CmdPalette
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// parse command
	Input   string
	RuleSet commands.RuleSet

	// Raw args remaining after the command token
	Raw []string
}

const usageText = `flowdesk - slash-command workbench for the process flow designer

Flowdesk interprets the designer's chat and workflow slash commands:
it parses, validates and executes them against a local workflow graph,
an opportunity store and the nb note-taking tool.

Usage:
  flowdesk                       Start the interactive session (default)
  flowdesk parse "<input>"       Parse one input and print the result
    --set chat|workflow          Rule set to parse against (default: chat)
    --json                       Print the execution envelope as JSON
  flowdesk lint                  Check the grammars for overlapping rules
  flowdesk palette               Pick a command interactively
  flowdesk status                Show configuration and data paths
  flowdesk version               Show version information
  flowdesk help                  Show this help

Flags:
  -q, --quiet      Plain output, no styling
  -v, --verbose    Verbose output

Interactive commands are discovered with /help and /commands inside the
session. Input without a leading slash is analyzed as free text.`

// ParseArgs parses os.Args-style arguments (program name excluded).
func ParseArgs(argv []string) Args {
	args := Args{Command: CmdREPL, RuleSet: commands.RuleSetChat}

	parser := NewArgParser(argv)
	args.Quiet = parser.BoolFlag("quiet") || parser.BoolFlag("q")
	args.Verbose = parser.BoolFlag("verbose") || parser.BoolFlag("v")
	args.JSON = parser.BoolFlag("json")
	args.Raw = parser.Positional()

	switch parser.Subcommand() {
	case "":
		switch {
		case parser.BoolFlag("version") || parser.BoolFlag("V"):
			args.Command = CmdVersion
		case parser.BoolFlag("help") || parser.BoolFlag("h"):
			args.Command = CmdHelp
		default:
			args.Command = CmdREPL
		}
	case "parse":
		args.Command = CmdParse
		if rest := parser.Rest(); len(rest) > 0 {
			args.Input = rest[0]
		}
		if set := parser.Flag("set"); set == string(commands.RuleSetWorkflow) {
			args.RuleSet = commands.RuleSetWorkflow
		}
	case "lint":
		args.Command = CmdLint
	case "palette":
		args.Command = CmdPalette
	case "status", "s":
		args.Command = CmdStatus
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		// Unknown subcommand falls back to help so a typo never starts a
		// session the user did not ask for.
		args.Command = CmdHelp
	}
	return args
}

// Run dispatches a parsed command and returns the process exit code.
func Run(args Args) int {
	cfg := config.Global()
	if args.Quiet {
		cfg.UI.Quiet = true
	}

	switch args.Command {
	case CmdREPL:
		if err := RunREPL(cfg); err != nil {
			fmt.Fprintln(os.Stderr, styles.Render(styles.Error, cfg.UI.Quiet, "error: "+err.Error()))
			return 1
		}
		return 0

	case CmdParse:
		return runParse(args, cfg)

	case CmdLint:
		return runLint(cfg)

	case CmdPalette:
		choice, err := palette.Run(commands.NewEngine())
		if err != nil {
			fmt.Fprintln(os.Stderr, "palette:", err)
			return 1
		}
		if choice != "" {
			fmt.Println(choice)
		}
		return 0

	case CmdStatus:
		return runStatus(cfg)

	case CmdVersion:
		fmt.Printf("flowdesk %s (%s, %s, %s/%s)\n", Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
		return 0

	default:
		fmt.Println(usageText)
		return 0
	}
}

// runParse interprets one input line and prints the outcome: the JSON
// envelope with --json, otherwise a human-readable breakdown.
func runParse(args Args, cfg *config.Config) int {
	if args.Input == "" {
		fmt.Fprintln(os.Stderr, `usage: flowdesk parse [--set chat|workflow] [--json] "<input>"`)
		return 2
	}

	engine := commands.NewEngine()
	parsed := engine.Parse(args.Input, args.RuleSet)
	validation := engine.Validate(parsed)

	if args.JSON {
		out := struct {
			Kind       string             `json:"kind"`
			Envelope   *commands.Envelope `json:"envelope,omitempty"`
			Valid      bool               `json:"valid"`
			Errors     []string           `json:"errors,omitempty"`
			Warnings   []string           `json:"warnings,omitempty"`
			Suggestion string             `json:"suggestion,omitempty"`
		}{
			Kind:       parsed.Kind,
			Valid:      validation.Valid,
			Errors:     validation.Errors,
			Warnings:   validation.Warnings,
			Suggestion: parsed.Suggestion,
		}
		if env, ok := engine.Envelope(parsed); ok {
			out.Envelope = &env
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "encoding result:", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Print(renderParsed(parsed, validation, cfg.UI.Quiet))
	if !validation.Valid {
		return 1
	}
	return 0
}

// runLint checks every documented example against both grammar tables and
// reports inputs matched by more than one rule.
func runLint(cfg *config.Config) int {
	reports := commands.NewEngine().Lint()
	if len(reports) == 0 {
		fmt.Println(styles.Render(styles.Success, cfg.UI.Quiet, "grammars are unambiguous"))
		return 0
	}
	for _, r := range reports {
		fmt.Println(styles.Render(styles.Warning, cfg.UI.Quiet,
			fmt.Sprintf("%s matches %v", r.Input, r.Candidates)))
	}
	return 1
}

// runStatus prints the resolved configuration and data locations.
func runStatus(cfg *config.Config) int {
	configPath, _ := config.ConfigPath()
	dbPath, _ := cfg.DatabasePath()
	historyPath, _ := cfg.HistoryPath()

	fmt.Println(styles.Render(styles.Title, cfg.UI.Quiet, "flowdesk status"))
	fmt.Printf("  version:   %s\n", Version)
	fmt.Printf("  config:    %s\n", configPath)
	fmt.Printf("  database:  %s\n", dbPath)
	fmt.Printf("  history:   %s\n", historyPath)
	fmt.Printf("  notes bin: %s\n", cfg.Notes.Binary)
	return 0
}
