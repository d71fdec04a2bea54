package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// consoleHandler writes one line per record:
//
//	2026-01-02 15:04:05 INFO [minify] book.cbz · 1a2b3c4d (convert) – page converted index=3 total=40
//
// The run, stage, and archive fields form the subject instead of trailing
// key=value pairs.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
	colors    map[slog.Level]*color.Color
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource, colored bool) *consoleHandler {
	h := &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
	if colored {
		h.colors = map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.Faint),
			slog.LevelInfo:  color.New(color.FgCyan),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		}
		for _, c := range h.colors {
			c.EnableColor()
		}
	}
	return h
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var s subject
	rest := kvs[:0]
	for _, field := range kvs {
		if s.take(field) {
			continue
		}
		rest = append(rest, field)
	}

	var buf bytes.Buffer
	buf.Grow(160 + len(rest)*24)

	buf.WriteString(formatTimestamp(timestamp))
	buf.WriteByte(' ')
	buf.WriteString(h.levelLabel(record.Level))
	if s.component != "" {
		buf.WriteString(" [")
		buf.WriteString(s.component)
		buf.WriteByte(']')
	}
	if text := s.String(); text != "" {
		buf.WriteByte(' ')
		buf.WriteString(text)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	buf.WriteString(" – ")
	buf.WriteString(message)

	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}

	for _, field := range rest {
		if field.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(field.key)
		buf.WriteByte('=')
		buf.WriteString(formatField(field.key, field.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	var label string
	var key slog.Level
	switch {
	case level >= slog.LevelError:
		label, key = "ERROR", slog.LevelError
	case level >= slog.LevelWarn:
		label, key = "WARN", slog.LevelWarn
	case level >= slog.LevelInfo:
		label, key = "INFO", slog.LevelInfo
	default:
		label, key = "DEBUG", slog.LevelDebug
	}
	if c, ok := h.colors[key]; ok {
		return c.Sprint(label)
	}
	return label
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		attrs:     append([]slog.Attr(nil), h.attrs...),
		groups:    append([]string(nil), h.groups...),
		addSource: h.addSource,
		colors:    h.colors,
	}
}

// subject collects the fields that identify what a line is about. The first
// value of each key wins.
type subject struct {
	component string
	archive   string
	runID     string
	stage     string
}

func (s *subject) take(field kv) bool {
	switch field.key {
	case FieldComponent:
		if s.component == "" {
			s.component = attrString(field.value)
		}
	case FieldArchive:
		if s.archive == "" {
			s.archive = filepath.Base(attrString(field.value))
		}
	case FieldRunID:
		if s.runID == "" {
			s.runID = shortRunID(attrString(field.value))
		}
	case FieldStage:
		// Later stage values override: the pipeline re-tags as it advances.
		s.stage = attrString(field.value)
	default:
		return false
	}
	return true
}

func (s subject) String() string {
	parts := make([]string, 0, 2)
	if s.archive != "" {
		parts = append(parts, s.archive)
	}
	if s.runID != "" {
		parts = append(parts, s.runID)
	}
	text := strings.Join(parts, " · ")
	if s.stage != "" {
		if text == "" {
			return s.stage
		}
		text += " (" + s.stage + ")"
	}
	return text
}

func shortRunID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		return compact[:8]
	}
	return compact
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}
