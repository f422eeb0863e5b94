package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Line struct {
	Time  time.Time
	Level slog.Level
	Text  string
}

// Feed is a slog.Handler keeping the most recent records in memory for the
// dashboard.
type Feed struct {
	buf    *ring
	level  slog.Leveler
	attrs  string
	prefix string
}

type ring struct {
	mu    sync.Mutex
	lines []Line
	next  int
	full  bool
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 100
	}
	return &Feed{buf: &ring{lines: make([]Line, size)}, level: slog.LevelInfo}
}

// Lines returns buffered lines, oldest first.
func (f *Feed) Lines() []Line {
	r := f.buf
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Line(nil), r.lines[:r.next]...)
	}
	out := make([]Line, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	return append(out, r.lines[:r.next]...)
}

func (f *Feed) Enabled(_ context.Context, level slog.Level) bool {
	return level >= f.level.Level()
}

func (f *Feed) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(rec.Message)
	b.WriteString(f.attrs)
	rec.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, f.prefix, a)
		return true
	})

	r := f.buf
	r.mu.Lock()
	r.lines[r.next] = Line{Time: rec.Time, Level: rec.Level, Text: b.String()}
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()
	return nil
}

func (f *Feed) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(f.attrs)
	for _, a := range attrs {
		writeAttr(&b, f.prefix, a)
	}
	clone := *f
	clone.attrs = b.String()
	return &clone
}

func (f *Feed) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	clone := *f
	clone.prefix = f.prefix + name + "."
	return &clone
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix+a.Key+".", ga)
		}
		return
	}
	// component is implied by the message in the dashboard.
	if a.Key == "component" {
		return
	}
	fmt.Fprintf(b, " %s%s=%v", prefix, a.Key, a.Value.Any())
}
