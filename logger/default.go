// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import "log/slog"

// defaultLogger serves the package level helpers, which add one frame to the
// caller depth.
var defaultLogger = &Logger{sl: slog.New(stderrHandler(5))}

func Error(a ...any)   { defaultLogger.Error(a...) }
func Warning(a ...any) { defaultLogger.Warning(a...) }
func Info(a ...any)    { defaultLogger.Info(a...) }
func Debug(a ...any)   { defaultLogger.Debug(a...) }

func Errorf(format string, a ...any)   { defaultLogger.Errorf(format, a...) }
func Warningf(format string, a ...any) { defaultLogger.Warningf(format, a...) }
func Infof(format string, a ...any)    { defaultLogger.Infof(format, a...) }
func Debugf(format string, a ...any)   { defaultLogger.Debugf(format, a...) }

// With returns a child of the default logger.
func With(args ...any) *Logger { return defaultLogger.With(args...) }
