// Package logger provides the module-prefixed slog loggers used across the
// extractor. Output goes to stderr as
//
//	[module] LEVEL: message (key=value, ...)
//
// Debug output is enabled by DBEXTRACT_DEBUG=true or by SetDebug.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	level      = new(slog.LevelVar)
	rootLogger *slog.Logger
)

func init() {
	if debug, _ := strconv.ParseBool(os.Getenv("DBEXTRACT_DEBUG")); debug {
		level.Set(slog.LevelDebug)
	}
	rootLogger = New(os.Stderr, level)
}

// New returns a logger writing the prefixed text format to w
func New(w io.Writer, lvl slog.Leveler) *slog.Logger {
	return slog.New(&customHandler{w: w, mu: &sync.Mutex{}, level: lvl})
}

// GetLogger returns a logger with the given prefix for easier filtering
func GetLogger(prefix string) *slog.Logger {
	return rootLogger.With("module", prefix)
}

// SetDebug switches every logger obtained from GetLogger between Debug and
// Info level.
func SetDebug(on bool) {
	if on {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

type customHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	attrs []slog.Attr
	group string
}

func (h *customHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *customHandler) Handle(_ context.Context, record slog.Record) error {
	var levelStr string
	switch record.Level {
	case slog.LevelDebug:
		levelStr = "DEBUG"
	case slog.LevelInfo:
		levelStr = "INFO"
	case slog.LevelWarn:
		levelStr = "WARNING"
	case slog.LevelError:
		levelStr = "ERROR"
	default:
		levelStr = record.Level.String()
	}

	var module string
	var args []string
	add := func(a slog.Attr) {
		if a.Key == "module" {
			module = a.Value.String()
			return
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		args = append(args, fmt.Sprintf("%s=%v", key, a.Value))
	}
	for _, a := range h.attrs {
		add(a)
	}
	record.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	var b strings.Builder
	if module != "" {
		fmt.Fprintf(&b, "[%s] ", module)
	}
	fmt.Fprintf(&b, "%s: %s", levelStr, record.Message)
	if len(args) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(args, ", "))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *customHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &customHandler{
		w:     h.w,
		mu:    h.mu,
		level: h.level,
		attrs: newAttrs,
		group: h.group,
	}
}

func (h *customHandler) WithGroup(name string) slog.Handler {
	return &customHandler{
		w:     h.w,
		mu:    h.mu,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}
