// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
)

// newHandler picks the record format for w. A terminal gets colored tint output
// with the caller shown in debug mode. Anything else (a Sensu agent or journald
// capturing stderr) gets logfmt with lower-case levels and the plugin name.
// The check result itself always goes to stdout, so w is normally os.Stderr.
func newHandler(w io.Writer, term bool, depth int) slog.Handler {
	if !term {
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       Level.lvl,
			ReplaceAttr: replaceText,
		}).WithAttrs([]slog.Attr{pluginAttr})
	}

	h := tint.NewHandler(w, &tint.Options{
		NoColor:     runtime.GOOS == "windows",
		AddSource:   true,
		Level:       Level.lvl,
		ReplaceAttr: replaceTerm,
	})
	return &callerHandler{skip: depth, next: h}
}

func stderrHandler(depth int) slog.Handler { return newHandler(os.Stderr, isTerm, depth) }

func replaceText(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if isJournal {
			return slog.Attr{}
		}
	case slog.LevelKey:
		return slog.String(a.Key, strings.ToLower(levelName(a.Value.Any().(slog.Level))))
	}
	return a
}

func replaceTerm(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		return slog.Attr{}
	case slog.SourceKey:
		if !Level.Enabled(slog.LevelDebug) {
			return slog.Attr{}
		}
	case slog.LevelKey:
		if s, ok := customLevelsTerm[a.Value.Any().(slog.Level)]; ok {
			return slog.String(a.Key, s)
		}
	}
	return a
}

func levelName(lvl slog.Level) string {
	if s, ok := customLevels[lvl]; ok {
		return s
	}
	return lvl.String()
}

// callerHandler points the record source at the code that called the logger
// instead of at this package. skip counts the frames between slog.Logger.Log
// and that caller.
type callerHandler struct {
	skip int
	next slog.Handler
}

func (h *callerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *callerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &callerHandler{skip: h.skip, next: h.next.WithAttrs(attrs)}
}

func (h *callerHandler) WithGroup(name string) slog.Handler {
	return &callerHandler{skip: h.skip, next: h.next.WithGroup(name)}
}

func (h *callerHandler) Handle(ctx context.Context, r slog.Record) error {
	var pcs [1]uintptr
	// +2 for runtime.Callers and Handle itself
	runtime.Callers(h.skip+2, pcs[:])
	r.PC = pcs[0]
	return h.next.Handle(ctx, r)
}
