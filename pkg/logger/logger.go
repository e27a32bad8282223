package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger is the leveled key/value logger used across the service
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]level{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

type stdLogger struct {
	out    *log.Logger
	errOut *log.Logger
	min    level
}

// New creates a logger that writes at or above the given level
// ("debug", "info", "warn", "error"; unknown values fall back to info).
func New(levelName string) Logger {
	min, ok := levelNames[strings.ToLower(levelName)]

	if !ok {
		min = levelInfo
	}

	return &stdLogger{
		out:    log.New(os.Stdout, "", log.Ldate|log.Ltime),
		errOut: log.New(os.Stderr, "", log.Ldate|log.Ltime),
		min:    min,
	}
}

func (l *stdLogger) Debug(msg string, keyvals ...interface{}) {
	l.write(levelDebug, "DEBUG", msg, keyvals)
}

func (l *stdLogger) Info(msg string, keyvals ...interface{}) {
	l.write(levelInfo, "INFO", msg, keyvals)
}

func (l *stdLogger) Warn(msg string, keyvals ...interface{}) {
	l.write(levelWarn, "WARN", msg, keyvals)
}

func (l *stdLogger) Error(msg string, keyvals ...interface{}) {
	l.write(levelError, "ERROR", msg, keyvals)
}

func (l *stdLogger) write(lv level, tag, msg string, keyvals []interface{}) {
	if lv < l.min {
		return
	}

	dst := l.out

	if lv == levelError {
		dst = l.errOut
	}

	dst.Println(tag + ": " + formatKeyvals(msg, keyvals))
}

func formatKeyvals(msg string, keyvals []interface{}) string {
	if len(keyvals) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		value := "missing"

		if i+1 < len(keyvals) {
			value = fmt.Sprintf("%v", keyvals[i+1])
		}

		b.WriteString(" " + key + "=" + value)
	}

	return b.String()
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
