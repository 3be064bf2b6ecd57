// Package logger implements an asynchronous slog.Handler writing colored lines.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// sink is shared by a handler and all handlers derived from it.
type sink struct {
	ch     chan []byte
	writer io.Writer
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

// Handler is a slog.Handler formatting records as colored lines that are written to the underlying writer
// by a background goroutine.
type Handler struct {
	sink  *sink
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// New returns a Handler writing records of at least the level passed to w.
func New(w io.Writer, level slog.Leveler) *Handler {
	s := &sink{ch: make(chan []byte, 1024), writer: w}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for line := range s.ch {
			_, _ = s.writer.Write(line)
		}
	}()
	return &Handler{sink: s, level: level}
}

// Enabled ...
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle ...
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String()
	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.BlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s | %-5s | %s", color.GreenString(r.Time.Format("2006-01-02T15:04:05")), level, color.CyanString(r.Message))
	for _, attr := range h.attrs {
		b.WriteString(color.CyanString(" %s=%v", attr.Key, attr.Value))
	}
	r.Attrs(func(attr slog.Attr) bool {
		b.WriteString(color.CyanString(" %s=%v", h.key(attr.Key), attr.Value))
		return true
	})
	b.WriteByte('\n')

	h.sink.mu.RLock()
	defer h.sink.mu.RUnlock()
	if h.sink.closed {
		return nil
	}
	h.sink.ch <- []byte(b.String())
	return nil
}

func (h *Handler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// WithAttrs ...
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.key(attr.Key)
		merged = append(merged, attr)
	}
	return &Handler{sink: h.sink, level: h.level, attrs: merged, group: h.group}
}

// WithGroup ...
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{sink: h.sink, level: h.level, attrs: h.attrs, group: h.key(name)}
}

// Close writes all queued lines and stops the handler. Records handled after Close are discarded.
func (h *Handler) Close() error {
	h.sink.once.Do(func() {
		h.sink.mu.Lock()
		h.sink.closed = true
		close(h.sink.ch)
		h.sink.mu.Unlock()
		h.sink.wg.Wait()
	})
	return nil
}
