// Package logger provides leveled logging for all Folio components.
//
// The logger is intentionally simple: a process-wide level filter over the
// standard library logger, configured once at startup from the loaded
// configuration. Components log through the package-level functions so that
// log routing stays consistent across the storage, deletion, and HTTP layers.
package logger

import (
	"encoding/json"
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	jsonFormat   = false
	logger       = stdlog.New(os.Stdout, "", 0)
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SetLevel sets the minimum level that will be emitted.
// Unrecognized values leave the current level unchanged.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

// SetFormat selects between "text" and "json" output.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()

	jsonFormat = strings.EqualFold(format, "json")
}

// SetOutput routes log output to stdout, stderr, or a file path.
//
// Returns an error if a file path is given and cannot be opened for append.
func SetOutput(output string) error {
	mu.Lock()
	defer mu.Unlock()

	switch output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", output, err)
		}
		logger.SetOutput(file)
	}

	return nil
}

func logAt(level Level, format string, v ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < currentLevel {
		return
	}

	message := fmt.Sprintf(format, v...)

	if jsonFormat {
		entry := map[string]string{
			"time":    time.Now().Format(time.RFC3339),
			"level":   level.String(),
			"message": message,
		}
		encoded, err := json.Marshal(entry)
		if err != nil {
			// Fall back to text rather than dropping the line.
			logger.Printf("[%s] [%s] %s", time.Now().Format("2006-01-02 15:04:05"), level.String(), message)
			return
		}
		logger.Println(string(encoded))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
}

func Debug(format string, v ...any) {
	logAt(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	logAt(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	logAt(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	logAt(LevelError, format, v...)
}
