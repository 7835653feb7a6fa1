// Copyright 2024 The numastress Authors. All Rights Reserved.
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

package log

import (
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

// Level is the log message severity level below which messages are suppressed.
type Level int32

const (
	// LevelDebug corresponds to debug messages.
	LevelDebug Level = iota
	// LevelInfo corresponds to informational messages.
	LevelInfo
	// LevelWarn corresponds to warning messages.
	LevelWarn
	// LevelError corresponds to error messages.
	LevelError
)

// Logger is the interface for producing log messages for/from a source.
type Logger interface {
	// Debug formats and emits a debug message.
	Debug(format string, args ...interface{})
	// Info formats and emits an informational message.
	Info(format string, args ...interface{})
	// Warn formats and emits a warning message.
	Warn(format string, args ...interface{})
	// Error formats and emits an error message.
	Error(format string, args ...interface{})
	// Fatal formats and emits an error message and os.Exit()'s with status 1.
	Fatal(format string, args ...interface{})

	// EnableDebug enables or disables debug messages for this Logger.
	EnableDebug(bool) bool
	// DebugEnabled checks if debug messages are enabled for this Logger.
	DebugEnabled() bool
	// Source returns the source name of this Logger.
	Source() string
}

// logger implements Logger on top of klog.
type logger struct {
	source string
	prefix string
	debug  bool
}

// logging is the runtime state shared by all loggers.
var logging = struct {
	sync.RWMutex
	level   Level
	debug   bool
	loggers map[string]*logger
}{
	level:   LevelInfo,
	loggers: make(map[string]*logger),
}

// NewLogger creates a logger for the given source, reusing an existing one
// for the same source if there is one.
func NewLogger(source string) Logger {
	source = strings.Trim(source, "[] ")

	logging.Lock()
	defer logging.Unlock()

	if l, ok := logging.loggers[source]; ok {
		return l
	}
	l := &logger{
		source: source,
		prefix: "[" + source + "] ",
		debug:  logging.debug,
	}
	logging.loggers[source] = l
	return l
}

// SetLevel sets the lowest severity level that is not suppressed.
func SetLevel(level Level) {
	logging.Lock()
	defer logging.Unlock()
	logging.level = level
}

// EnableDebug enables or disables debug messages for all loggers,
// including ones created later.
func EnableDebug(state bool) {
	logging.Lock()
	defer logging.Unlock()
	logging.debug = state
	for _, l := range logging.loggers {
		l.debug = state
	}
}

// Flush flushes any pending log messages in the backend.
func Flush() {
	klog.Flush()
}

func (l *logger) emit(level Level) bool {
	logging.RLock()
	defer logging.RUnlock()
	if level == LevelDebug {
		return l.debug
	}
	return level >= logging.level
}

func (l *logger) Debug(format string, args ...interface{}) {
	if l.emit(LevelDebug) {
		klog.InfoDepth(1, l.prefix+"D: "+fmt.Sprintf(format, args...))
	}
}

func (l *logger) Info(format string, args ...interface{}) {
	if l.emit(LevelInfo) {
		klog.InfoDepth(1, l.prefix+fmt.Sprintf(format, args...))
	}
}

func (l *logger) Warn(format string, args ...interface{}) {
	if l.emit(LevelWarn) {
		klog.WarningDepth(1, l.prefix+fmt.Sprintf(format, args...))
	}
}

func (l *logger) Error(format string, args ...interface{}) {
	if l.emit(LevelError) {
		klog.ErrorDepth(1, l.prefix+fmt.Sprintf(format, args...))
	}
}

func (l *logger) Fatal(format string, args ...interface{}) {
	klog.FatalDepth(1, l.prefix+fmt.Sprintf(format, args...))
}

func (l *logger) EnableDebug(state bool) bool {
	logging.Lock()
	defer logging.Unlock()
	old := l.debug
	l.debug = state
	return old
}

func (l *logger) DebugEnabled() bool {
	logging.RLock()
	defer logging.RUnlock()
	return l.debug
}

func (l *logger) Source() string {
	return l.source
}
