package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Fields son los pares clave/valor que acompañan cada línea.
type Fields map[string]any

type Logger interface {
	With(fields Fields) Logger

	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Writer destino; si es nil se usa stdout.
	Writer io.Writer
}

// lineWriter es compartido entre todos los loggers derivados con With.
type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lineWriter) writeLine(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = io.WriteString(w.out, s+"\n")
}

type stdLogger struct {
	out    *lineWriter
	level  Level
	format Format
	base   Fields
	now    func() time.Time
}

func New(opts Options) Logger {
	out := opts.Writer
	if out == nil {
		out = os.Stdout
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	base := Fields{}
	if app := strings.TrimSpace(opts.App); app != "" {
		base["app"] = app
	}

	return &stdLogger{
		out:    &lineWriter{out: out},
		level:  opts.Level,
		format: format,
		base:   base,
		now:    time.Now,
	}
}

// Nop descarta todo. Útil en tests.
func Nop() Logger {
	return New(Options{Level: Error + 1, Writer: io.Discard})
}

func (l *stdLogger) With(fields Fields) Logger {
	if len(fields) == 0 {
		return l
	}

	merged := make(Fields, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		merged[k] = v
	}

	return &stdLogger{
		out:    l.out,
		level:  l.level,
		format: l.format,
		base:   merged,
		now:    l.now,
	}
}

func (l *stdLogger) Debug(msg string, fields Fields) { l.log(Debug, msg, fields) }
func (l *stdLogger) Info(msg string, fields Fields)  { l.log(Info, msg, fields) }
func (l *stdLogger) Warn(msg string, fields Fields)  { l.log(Warn, msg, fields) }
func (l *stdLogger) Error(msg string, fields Fields) { l.log(Error, msg, fields) }

func (l *stdLogger) log(lvl Level, msg string, fields Fields) {
	if lvl < l.level {
		return
	}

	entry := Fields{
		"ts":    l.now().UTC().Format(time.RFC3339Nano),
		"level": lvl.String(),
		"msg":   msg,
	}
	for k, v := range l.base {
		entry[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}

	if l.format == FormatJSON {
		b, err := json.Marshal(entry)
		if err != nil {
			l.out.writeLine(fmt.Sprintf(`{"level":"error","msg":"log marshal failed: %s"}`, err))
			return
		}
		l.out.writeLine(string(b))
		return
	}
	l.out.writeLine(formatText(entry))
}

func formatText(m Fields) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

type ctxKey struct{}

// WithContext guarda el logger (normalmente ya con request_id) en el contexto.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext devuelve el logger del request, o fallback si no hay ninguno.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return Nop()
}
