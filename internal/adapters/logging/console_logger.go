package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/domain/shared"
)

// Format selects how entries are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ConsoleLogger writes ContainerLogger entries to a stream, one per line.
// Text entries look like:
//
//	[2024-03-01T12:00:00Z] [haulage-Bari] INFO: cycle completed action=haulage_cycle drained=10
//
// Thread-safe.
type ConsoleLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	component string
	minRank   int
	format    Format
	clock     shared.Clock
	colorize  bool
}

// Option configures a ConsoleLogger
type Option func(*ConsoleLogger)

// WithClock overrides the timestamp source
func WithClock(clock shared.Clock) Option {
	return func(l *ConsoleLogger) { l.clock = clock }
}

// WithColor forces level colouring on or off. Text output to a terminal is
// coloured by default; JSON output never is.
func WithColor(enabled bool) Option {
	return func(l *ConsoleLogger) { l.colorize = enabled }
}

// NewConsoleLogger creates a logger for component that drops entries below minLevel
func NewConsoleLogger(out io.Writer, component, minLevel string, format Format, opts ...Option) *ConsoleLogger {
	if format == "" {
		format = FormatText
	}
	l := &ConsoleLogger{
		mu:        &sync.Mutex{},
		out:       out,
		component: component,
		minRank:   common.LevelRank(minLevel),
		format:    format,
		clock:     shared.NewRealClock(),
		colorize:  format == FormatText && !color.NoColor,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.format == FormatJSON {
		l.colorize = false
	}
	return l
}

// Named returns a logger sharing the sink and settings under another component name
func (l *ConsoleLogger) Named(component string) common.ContainerLogger {
	return &ConsoleLogger{
		mu:        l.mu,
		out:       l.out,
		component: component,
		minRank:   l.minRank,
		format:    l.format,
		clock:     l.clock,
		colorize:  l.colorize,
	}
}

// Log implements common.ContainerLogger
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	level = normalizeLevel(level)
	if common.LevelRank(level) < l.minRank {
		return
	}
	now := l.clock.Now().UTC()

	var line string
	if l.format == FormatJSON {
		line = l.jsonLine(now, level, message, metadata)
	} else {
		line = l.textLine(now, level, message, metadata)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

func (l *ConsoleLogger) textLine(now time.Time, level, message string, metadata map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", now.Format(time.RFC3339), l.component, l.levelTag(level), message)
	for _, key := range sortedKeys(metadata) {
		fmt.Fprintf(&b, " %s=%v", key, metadata[key])
	}
	return b.String()
}

func (l *ConsoleLogger) jsonLine(now time.Time, level, message string, metadata map[string]interface{}) string {
	entry := make(map[string]interface{}, len(metadata)+4)
	for k, v := range metadata {
		entry[k] = v
	}
	entry["time"] = now.Format(time.RFC3339Nano)
	entry["component"] = l.component
	entry["level"] = level
	entry["message"] = message

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":%q}`, "unencodable log entry: "+err.Error())
	}
	return string(data)
}

func (l *ConsoleLogger) levelTag(level string) string {
	if !l.colorize {
		return level
	}
	var c *color.Color
	switch level {
	case common.LevelDebug:
		c = color.New(color.FgHiBlack)
	case common.LevelWarning:
		c = color.New(color.FgYellow)
	case common.LevelError:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgGreen)
	}
	c.EnableColor()
	return c.Sprint(level)
}

func normalizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return common.LevelDebug
	case "WARN", "WARNING":
		return common.LevelWarning
	case "ERROR":
		return common.LevelError
	default:
		return common.LevelInfo
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
