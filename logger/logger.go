package logger

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the leveled logger used by the builder and the feeders.
// Arguments after msg are read as key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

var LoggerEnabled = true

type DefaultLogger struct {
	name string
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{name: name}
}

func (d *DefaultLogger) Debug(msg string, args ...any) {
	d.print("DEBUG", msg, args)
}

func (d *DefaultLogger) Info(msg string, args ...any) {
	d.print("INFO", msg, args)
}

func (d *DefaultLogger) Error(msg string, args ...any) {
	d.print("ERROR", msg, args)
}

func (d *DefaultLogger) print(level, msg string, args []any) {
	if !LoggerEnabled {
		return
	}
	log.Printf("[%s] %s | %s%s\n", level, d.name, msg, formatPairs(args))
}

func formatPairs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Error(string, ...any) {}
