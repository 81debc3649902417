// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// LogHandler is a slog.Handler that holds records for the interactive
// front end. While bubbletea owns the terminal, writing log records
// straight to stderr would tear the prompt line, so records are queued
// and printed above the prompt after each command.
//
// Records below the configured level are dropped. All handlers derived
// via WithAttrs/WithGroup share one queue.
type LogHandler struct {
	level  slog.Leveler
	queue  *logQueue
	attrs  []slog.Attr
	groups []string
}

type logQueue struct {
	mutex sync.Mutex
	lines []logLine
}

// logLine is one formatted record waiting to be printed.
type logLine struct {
	Level slog.Level
	Text  string
}

// NewLogHandler creates a handler that queues records at or above
// level for [RunInteractive].
func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{level: level, queue: &logQueue{}}
}

// Enabled reports whether the handler is interested in records at the
// given level.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle formats the record as "LEVEL message (key=value, ...)" and
// queues it.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var attrParts []string
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	for _, attr := range handler.attrs {
		attrParts = append(attrParts, attr.Key+"="+attr.Value.String())
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, prefix+attr.Key+"="+attr.Value.String())
		return true
	})

	text := record.Level.String() + " " + record.Message
	if len(attrParts) > 0 {
		text += " (" + strings.Join(attrParts, ", ") + ")"
	}

	handler.queue.mutex.Lock()
	handler.queue.lines = append(handler.queue.lines, logLine{Level: record.Level, Text: text})
	handler.queue.mutex.Unlock()
	return nil
}

// WithAttrs returns a new handler with the given attributes appended.
// Attributes are qualified by the groups open at the time of the call.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := slices.Clone(handler.attrs)
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	for _, attr := range attrs {
		qualified = append(qualified, slog.Attr{Key: prefix + attr.Key, Value: attr.Value})
	}
	return &LogHandler{
		level:  handler.level,
		queue:  handler.queue,
		attrs:  qualified,
		groups: slices.Clone(handler.groups),
	}
}

// WithGroup returns a new handler with the given group name appended.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	return &LogHandler{
		level:  handler.level,
		queue:  handler.queue,
		attrs:  slices.Clone(handler.attrs),
		groups: append(slices.Clone(handler.groups), name),
	}
}

// drain removes and returns every queued line. Safe on a nil handler.
func (handler *LogHandler) drain() []logLine {
	if handler == nil {
		return nil
	}
	handler.queue.mutex.Lock()
	defer handler.queue.mutex.Unlock()
	lines := handler.queue.lines
	handler.queue.lines = nil
	return lines
}
