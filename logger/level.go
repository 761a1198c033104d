// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"log/slog"
	"strings"
)

const (
	levelNotice  = slog.Level(2)
	levelDisable = slog.Level(99)
)

var (
	customLevels = map[slog.Leveler]string{
		levelNotice: "NOTICE",
	}
	customLevelsTerm = map[slog.Leveler]string{
		levelNotice: "\u001B[34m" + "NTC" + "\u001B[0m",
	}
)

// Level is shared by every logger the package creates.
var Level = &level{lvl: &slog.LevelVar{}}

type level struct {
	lvl *slog.LevelVar
}

func (l *level) Enabled(level slog.Level) bool {
	return level >= l.lvl.Level()
}

func (l *level) Level() slog.Level {
	return l.lvl.Level()
}

func (l *level) Set(level slog.Level) {
	l.lvl.Set(level)
}

// SetByName sets the level from a Sensu or syslog style name. Names that only
// make sense for events (critical and above) silence the log. Unknown names are ignored.
func (l *level) SetByName(name string) {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		l.lvl.Set(lvl)
	}
}

var levelNames = map[string]slog.Level{
	"debug":     slog.LevelDebug,
	"info":      slog.LevelInfo,
	"notice":    levelNotice,
	"warn":      slog.LevelWarn,
	"warning":   slog.LevelWarn,
	"err":       slog.LevelError,
	"error":     slog.LevelError,
	"critical":  levelDisable,
	"alert":     levelDisable,
	"emergency": levelDisable,
	"off":       levelDisable,
}
