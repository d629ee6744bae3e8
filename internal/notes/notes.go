// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes bridges to the external nb note-taking CLI. It builds nb
// invocations for the note commands, feeds content on stdin, and parses
// nb's line-oriented output back into structured results. All invocations
// are rate-limited and bounded by a per-call timeout.
package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/flowdesk/internal/config"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrToolFailed   = errors.New("note tool failed")
	ErrToolNotFound = errors.New("note tool not found")
)

// =============================================================================
// BRIDGE
// =============================================================================

// Note is one parsed search result.
type Note struct {
	ID      string `json:"note_id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// CreateOptions are the optional parts of a note creation.
type CreateOptions struct {
	Title    string
	Tags     []string
	Notebook string
}

// runnerFunc executes the tool; swapped out in tests.
type runnerFunc func(ctx context.Context, stdin string, args ...string) (stdout, stderr string, err error)

// Bridge invokes the nb CLI. Safe for concurrent use.
type Bridge struct {
	binary  string
	timeout time.Duration
	limiter *rate.Limiter
	run     runnerFunc
}

// NewBridge builds a bridge from the notes configuration.
func NewBridge(cfg config.NotesConfig) *Bridge {
	b := &Bridge{
		binary:  cfg.Binary,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
		limiter: rate.NewLimiter(rate.Limit(cfg.CallsPerSec), cfg.Burst),
	}
	b.run = b.execRun
	return b
}

// execRun is the real tool runner.
func (b *Bridge) execRun(ctx context.Context, stdin string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.binary, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		return "", "", fmt.Errorf("%w: %s", ErrToolNotFound, b.binary)
	}
	return stdout.String(), stderr.String(), err
}

// invoke waits for the rate limiter, then runs the tool.
func (b *Bridge) invoke(ctx context.Context, stdin string, args ...string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", err
	}
	stdout, stderr, err := b.run(ctx, stdin, args...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrToolFailed, msg)
	}
	return stdout, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Create adds a note and returns its id. Tags are rendered into a trailing
// "Tags: #a #b" line, which is how nb content carries them.
func (b *Bridge) Create(ctx context.Context, content string, opts CreateOptions) (string, error) {
	args := []string{"add"}
	if opts.Title != "" {
		args = append(args, "--title", opts.Title)
	}
	if opts.Notebook != "" && opts.Notebook != "default" {
		args = append(args, "--notebook", opts.Notebook)
	}
	if len(opts.Tags) > 0 {
		content = content + "\n\n" + renderTagLine(opts.Tags)
	}

	out, err := b.invoke(ctx, content, args...)
	if err != nil {
		return "", err
	}
	return extractNoteID(out), nil
}

// AddTags appends a "Tags: #a #b" line to an existing note through nb's
// non-interactive edit mode.
func (b *Bridge) AddTags(ctx context.Context, noteID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := b.invoke(ctx, "", "edit", noteID, "--content", renderTagLine(tags))
	return err
}

// List runs nb ls and parses the listing. A non-positive limit lists
// everything.
func (b *Bridge) List(ctx context.Context, notebook string, limit int) ([]Note, error) {
	args := []string{"ls", "--no-color"}
	if notebook != "" && notebook != "default" {
		args = append(args, "--notebook", notebook)
	}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}

	out, err := b.invoke(ctx, "", args...)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(out), nil
}

// Search runs nb search and parses the results.
func (b *Bridge) Search(ctx context.Context, query, notebook string) ([]Note, error) {
	args := []string{"search", query}
	if notebook != "" && notebook != "default" {
		args = append(args, "--notebook", notebook)
	}

	out, err := b.invoke(ctx, "", args...)
	if err != nil {
		return nil, err
	}
	return parseSearchResults(out), nil
}

// Version probes the tool installation and returns its version string.
// Used as the health check at startup.
func (b *Bridge) Version(ctx context.Context) (string, error) {
	out, err := b.invoke(ctx, "", "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// =============================================================================
// OUTPUT PARSING
// =============================================================================

var noteIDPattern = regexp.MustCompile(`\[(\d+)\]`)

// extractNoteID pulls the note id out of nb's add output, which looks like
// "Added: [123] Note Title". When nothing matches, a timestamp-based id is
// minted so the caller always gets a usable handle.
func extractNoteID(output string) string {
	if m := noteIDPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return "note-" + time.Now().Format("20060102-150405")
}

// parseSearchResults parses nb's "id: title: preview" search lines. Lines
// without at least an id and a title are skipped.
func parseSearchResults(output string) []Note {
	var results []Note
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 2 {
			continue
		}
		note := Note{
			ID:    strings.TrimSpace(parts[0]),
			Title: strings.TrimSpace(parts[1]),
		}
		if len(parts) > 2 {
			note.Preview = strings.TrimSpace(parts[2])
		}
		results = append(results, note)
	}
	return results
}

// renderTagLine renders tags as "Tags: #a #b".
func renderTagLine(tags []string) string {
	hashed := make([]string, len(tags))
	for i, t := range tags {
		hashed[i] = "#" + t
	}
	return "Tags: " + strings.Join(hashed, " ")
}
