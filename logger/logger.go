// Package logger provides structured logging for dynobj's diagnostics
// layer: a leveled logger (TRACE, DEBUG, INFO, WARN, ERROR) with
// subsystem-gated tracing, adapted from entitydb's logger package
// (osakka-entitydb/src/logger/logger.go) for a library that has no HTTP
// server or request lifecycle of its own.
//
// Log output format:
//
//	YYYY/MM/DD HH:MM:SS.ssssss [PID:GID] [LEVEL] function.file:line: message
//
// The logger is safe for concurrent use and adds negligible overhead
// when a level or subsystem is disabled, since the hot-path check is a
// single atomic load.
package logger

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel is the severity of a log message. Higher values are more
// severe; setting a minimum level suppresses everything below it.
type LogLevel int32

// Level Usage Guidelines:
//
// TRACE: per-operation detail within a single subsystem — intern-table
//
//	inserts, store representation upgrades, prototype cycle rejections.
//	TraceIf output is gated by EnableTrace(subsystem) in addition to the
//	TRACE level, to avoid overwhelming output when enabled globally; the
//	operation-trace messages in trace.go use the ungated Trace.
//
// DEBUG: coarser diagnostic detail — configuration applied, intern-table
//
//	cleanup.
//
// INFO: infrequent, notable events — log level changes, operation
//
//	tracing switched on or off.
//
// WARN: recoverable anomalies — e.g. a trace span left unclosed.
//
// ERROR: failures embedders should see regardless of level.
const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var (
	currentLevel atomic.Int32

	levelNames = map[LogLevel]string{
		TRACE: "TRACE",
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
	}

	// traceSubsystems tracks which subsystems currently emit TRACE
	// output. Recognized subsystems in this module: "intern", "store",
	// "prototype".
	traceSubsystems = make(map[string]bool)
	traceMutex      sync.RWMutex

	processID = os.Getpid()

	logger *log.Logger
)

func init() {
	logger = log.New(os.Stdout, "", 0)
	currentLevel.Store(int32(INFO))
}

// SetLogLevel sets the minimum log level by name (case-insensitive).
func SetLogLevel(level string) error {
	switch strings.ToUpper(level) {
	case "TRACE":
		currentLevel.Store(int32(TRACE))
	case "DEBUG":
		currentLevel.Store(int32(DEBUG))
	case "INFO":
		currentLevel.Store(int32(INFO))
	case "WARN":
		currentLevel.Store(int32(WARN))
	case "ERROR":
		currentLevel.Store(int32(ERROR))
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}
	Info("log level changed to %s", strings.ToUpper(level))
	return nil
}

// GetLogLevel returns the current minimum log level's name.
func GetLogLevel() string {
	return levelNames[LogLevel(currentLevel.Load())]
}

// EnableTrace turns on TRACE output for the given subsystem names.
func EnableTrace(subsystems ...string) {
	traceMutex.Lock()
	defer traceMutex.Unlock()
	for _, s := range subsystems {
		traceSubsystems[s] = true
	}
}

// DisableTrace turns off TRACE output for the given subsystem names.
func DisableTrace(subsystems ...string) {
	traceMutex.Lock()
	defer traceMutex.Unlock()
	for _, s := range subsystems {
		delete(traceSubsystems, s)
	}
}

// ClearTrace disables TRACE output for every subsystem.
func ClearTrace() {
	traceMutex.Lock()
	defer traceMutex.Unlock()
	traceSubsystems = make(map[string]bool)
}

// GetTraceSubsystems returns the subsystem names currently emitting
// TRACE output.
func GetTraceSubsystems() []string {
	traceMutex.RLock()
	defer traceMutex.RUnlock()
	out := make([]string, 0, len(traceSubsystems))
	for s := range traceSubsystems {
		out = append(out, s)
	}
	return out
}

func isTraceEnabled(subsystem string) bool {
	traceMutex.RLock()
	defer traceMutex.RUnlock()
	return traceSubsystems[subsystem]
}

func formatMessage(level LogLevel, skip int, format string, args ...interface{}) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		file = "unknown"
		line = 0
	}
	if idx := strings.LastIndex(file, "/"); idx != -1 {
		file = file[idx+1:]
	}
	if idx := strings.LastIndex(file, ".go"); idx != -1 {
		file = file[:idx]
	}

	funcName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		full := fn.Name()
		if idx := strings.LastIndex(full, "."); idx != -1 {
			funcName = full[idx+1:]
		}
	}

	msg := fmt.Sprintf(format, args...)
	threadID := getGoroutineID()
	timestamp := time.Now().Format("2006/01/02 15:04:05.000000")
	return fmt.Sprintf("%s [%d:%d] [%s] %s.%s:%d: %s",
		timestamp, processID, threadID, levelNames[level], funcName, file, line, msg)
}

func getGoroutineID() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id := 0
	fmt.Sscanf(fields[1], "%d", &id)
	return id
}

func logMessage(level LogLevel, skip int, format string, args ...interface{}) {
	if level < LogLevel(currentLevel.Load()) {
		return
	}
	logger.Println(formatMessage(level, skip, format, args...))
}

// TraceIf logs a TRACE message only when both the TRACE level and the
// named subsystem are enabled, the gate used for the per-operation
// detail described under TRACE above.
func TraceIf(subsystem string, format string, args ...interface{}) {
	if LogLevel(currentLevel.Load()) > TRACE || !isTraceEnabled(subsystem) {
		return
	}
	logMessage(TRACE, 3, "[%s] %s", subsystem, fmt.Sprintf(format, args...))
}

// Trace logs an unconditional TRACE message (no subsystem gate).
func Trace(format string, args ...interface{}) { logMessage(TRACE, 3, format, args...) }

// Debug logs a DEBUG message.
func Debug(format string, args ...interface{}) { logMessage(DEBUG, 3, format, args...) }

// Info logs an INFO message.
func Info(format string, args ...interface{}) { logMessage(INFO, 3, format, args...) }

// Warn logs a WARN message.
func Warn(format string, args ...interface{}) { logMessage(WARN, 3, format, args...) }

// Error logs an ERROR message.
func Error(format string, args ...interface{}) { logMessage(ERROR, 3, format, args...) }

// Configure sets up logging from environment variables:
// DYNOBJ_LOG_LEVEL and DYNOBJ_TRACE_SUBSYSTEMS (comma-separated).
func Configure() {
	if level := os.Getenv("DYNOBJ_LOG_LEVEL"); level != "" {
		_ = SetLogLevel(level)
	}
	if trace := os.Getenv("DYNOBJ_TRACE_SUBSYSTEMS"); trace != "" {
		subsystems := strings.Split(trace, ",")
		for i, s := range subsystems {
			subsystems[i] = strings.TrimSpace(s)
		}
		EnableTrace(subsystems...)
	}
}
