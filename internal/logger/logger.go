// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the severity-leveled structured logging used
// throughout the filesystem and its surrounding tooling: a thin wrapper
// around log/slog with a TRACE level the standard library doesn't define,
// and a choice between human-readable text and machine-readable JSON.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Severity levels. slog only defines Debug/Info/Warn/Error; Trace sits one
// tier below Debug, mirroring the five-level taxonomy this filesystem's
// configuration exposes.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Severity name strings accepted by Init's severity argument, matching cfg's
// log-severity flag values.
const (
	Trace   = "TRACE"
	Debug   = "DEBUG"
	Info    = "INFO"
	Warning = "WARNING"
	Error   = "ERROR"
	Off     = "OFF"
)

type loggerFactory struct {
	format string
}

func (f *loggerFactory) createJSONOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: severityReplacer(prefix),
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// severityReplacer renames slog's "level" attribute to "severity" (with the
// Trace level spelled out, since slog has no name for it by default) and
// prefixes the message, matching the producer's log line format.
func severityReplacer(prefix string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			level := a.Value.Any().(slog.Level)
			a.Key = "severity"
			a.Value = slog.StringValue(severityName(level))
		case slog.MessageKey:
			a.Value = slog.StringValue(prefix + a.Value.String())
		case slog.TimeKey:
			a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
		}
		return a
	}
}

func severityName(level slog.Level) string {
	switch {
	case level < LevelDebug:
		return Trace
	case level < LevelInfo:
		return Debug
	case level < LevelWarn:
		return Info
	case level < LevelError:
		return Warning
	default:
		return Error
	}
}

var (
	defaultLoggerFactory = &loggerFactory{format: "text"}
	defaultProgramLevel  = new(slog.LevelVar)
	defaultLogger        = slog.New(defaultLoggerFactory.createJSONOrTextHandler(os.Stderr, defaultProgramLevel, ""))
)

// Init configures the package-level logger used by Tracef/Debugf/etc: format
// is "text" or "json", severity is one of the Trace..Off constants above.
func Init(format, severity string) {
	defaultLoggerFactory.format = format
	setLoggingLevel(severity, defaultProgramLevel)
	defaultLogger = slog.New(defaultLoggerFactory.createJSONOrTextHandler(os.Stderr, defaultProgramLevel, ""))
}

func setLoggingLevel(severity string, level *slog.LevelVar) {
	switch severity {
	case Trace:
		level.Set(LevelTrace)
	case Debug:
		level.Set(LevelDebug)
	case Info:
		level.Set(LevelInfo)
	case Warning:
		level.Set(LevelWarn)
	case Error:
		level.Set(LevelError)
	case Off:
		level.Set(slog.Level(1 << 20))
	default:
		level.Set(LevelInfo)
	}
}

func log(level slog.Level, format string, v ...any) {
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...any) { log(LevelTrace, format, v...) }
func Debugf(format string, v ...any) { log(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { log(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { log(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { log(LevelError, format, v...) }
