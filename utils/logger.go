/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// settingsMu guards defaultLevel, logFormat and logOutput.
var (
	settingsMu   sync.RWMutex
	defaultLevel = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	logFormat    = EnvDefaultString("LOG_FORMAT", "text")
)

var logOutput io.Writer = os.Stdout

// ConfigureLogFormat switches newly created loggers between "text" and "json".
func ConfigureLogFormat(format string) {
	f := "text"
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		f = "json"
	}
	settingsMu.Lock()
	logFormat = f
	settingsMu.Unlock()
}

// ConfigureLogOutput sets the writer used by loggers created afterwards.
func ConfigureLogOutput(w io.Writer) {
	if w == nil {
		return
	}
	settingsMu.Lock()
	logOutput = w
	settingsMu.Unlock()
}

var (
	callerSkipMu sync.RWMutex
	callerSkip   = []string{"github.com/sirupsen/logrus."}
)

func init() {
	pkg := reflect.TypeOf(TextLogFormatter{}).PkgPath()
	SkipCallerFrames(pkg+".(*TextLogFormatter).", pkg+".resolveCaller", pkg+".prettyCaller")
}

// SkipCallerFrames marks functions whose name starts with one of prefixes
// as logging wrappers. The reported caller is the first frame outside them.
func SkipCallerFrames(prefixes ...string) {
	callerSkipMu.Lock()
	defer callerSkipMu.Unlock()
	for _, p := range prefixes {
		if p != "" {
			callerSkip = append(callerSkip, p)
		}
	}
}

func skipCallerFrame(function string) bool {
	callerSkipMu.RLock()
	defer callerSkipMu.RUnlock()
	for _, p := range callerSkip {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}

// resolveCaller returns the first stack frame outside logrus and the
// registered wrappers, or fallback when the whole stack is wrapped.
func resolveCaller(fallback *runtime.Frame) *runtime.Frame {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if f.Function != "" && !skipCallerFrame(f.Function) {
			return &f
		}
		if !more {
			return fallback
		}
	}
}

func prettyCaller(f *runtime.Frame) (string, string) {
	f = resolveCaller(f)
	return f.Function, fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// SetLoggerLevel changes the level of a registered logger. It reports false
// when no logger is registered under name.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// ConfigureLogLevel sets the level of every registered logger and of
// loggers created afterwards.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	settingsMu.Lock()
	defaultLevel = lvl
	settingsMu.Unlock()
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.RUnlock()
}

// NewLogger returns a named logrus logger and registers it, replacing any
// logger previously registered under the same name.
func NewLogger(name string) *logrus.Logger {
	settingsMu.RLock()
	output, level, format := logOutput, defaultLevel, logFormat
	settingsMu.RUnlock()

	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(level)
	l.SetReportCaller(true)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  timestampFormat,
			FieldMap:         logrus.FieldMap{logrus.FieldKeyMsg: "message"},
			CallerPrettyfier: prettyCaller,
		})
	} else {
		l.SetFormatter(&TextLogFormatter{LoggerName: name, NameWidth: 10})
	}
	RegisterLogger(name, l)
	return l
}

// TextLogFormatter renders "time LEVEL pid --- [name] file:line : msg k=v".
type TextLogFormatter struct {
	LoggerName string
	NameWidth  int
}

func (f *TextLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString(fmt.Sprintf(" %5s %-6d --- [%*s]", strings.ToUpper(entry.Level.String()), os.Getpid(), f.NameWidth, limitRunes(f.LoggerName, f.NameWidth)))
	if entry.HasCaller() {
		c := resolveCaller(entry.Caller)
		b.WriteString(fmt.Sprintf(" %s:%d", filepath.Base(c.File), c.Line))
	}
	b.WriteString(" : ")
	b.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func EnvDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
