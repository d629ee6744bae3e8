// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the slash command interpretation engine for
// flowdesk.
//
// The engine turns raw chat input into structured, validated command data.
// It is built around an immutable Registry of grammar rules (anchored,
// case-insensitive regular expressions), constructed once at startup. Two
// rule sets exist side by side and are queried independently:
//
//   - the chat set: note, opportunity, analysis, database and help commands
//   - the workflow set: node, task, flowline, tag, matrix, view, selection,
//     navigation and batch commands for the process flow designer
//
// They are never merged, because the same prefix can legitimately mean
// different things in each subsystem (/note... vs /node...).
//
// Data flow: raw text -> Match -> extract -> validate. Input that does not
// start with "/" is classified as free text up front and never tested
// against any grammar. When more than one grammar matches the same input
// the ambiguity is surfaced as data rather than silently resolved; the
// development-time lint in lint.go replays every documented example
// against the full rule set to catch grammar overlaps before they ship.
//
// Every operation is a pure function of its input and the Registry; there
// is no I/O, no shared mutable state, and no internal concurrency. All
// failure modes are returned as values - worst case is an unknown-command
// result carrying a fuzzy suggestion, or an error result that degrades to
// free-text handling.
package commands
