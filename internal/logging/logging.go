// internal/logging/logging.go
//
// Process-wide leveled log sink. Framing traces are Debug, state
// transitions (session open, registry built, baud changed) are Info,
// ignorable anomalies (unknown protocol tag, datatype with no known
// layout) are Warn.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level selects the minimum severity that reaches the sink.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

var (
	mu     sync.Mutex
	level  = LevelInfo
	logger = log.New(os.Stderr, "", log.LstdFlags)

	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FBBF24"))
)

// SetLevel changes the minimum severity. Safe to call at any time.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput redirects the sink, for tests and for callers that want the
// traces in a file instead of stderr.
func SetOutput(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func emit(l Level, tag string, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	logger.Printf("%s %s", tag, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) {
	emit(LevelDebug, debugStyle.Render("DEBUG"), format, args...)
}

func Infof(format string, args ...any) {
	emit(LevelInfo, infoStyle.Render("INFO"), format, args...)
}

func Warnf(format string, args ...any) {
	emit(LevelWarn, warnStyle.Render("WARN"), format, args...)
}
