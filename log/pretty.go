package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// layout selects how a prettyHandler arranges the fields of a record.
type layout int

const (
	textLayout layout = iota // key=value pairs on one line
	jsonLayout               // one "key: value" field per line in braces
)

// palette holds the styles used to render each kind of value.
//
// Styles are bound to the renderer of the output writer, so writers that are
// not terminals receive plain text.
type palette struct {
	key, str, num, yes, no, dur, time, null lipgloss.Style

	level map[slog.Level]lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(c)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		time: fg("4"),
		null: fg("8"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3"),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the highest defined level not above l.
func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	style := p.level[slog.Level(LevelTrace)]

	for _, defined := range levels {
		if slog.Level(defined) <= l {
			style = p.level[slog.Level(defined)]
		}
	}

	return style
}

// field is a flattened attribute: group names are joined into the key with
// dots.
type field struct {
	key   string
	value slog.Value
}

// prettyHandler implements a colorized [slog.Handler] for terminals.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	layout layout
	fields []field
	groups []string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	lay layout,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		style:  makePalette(w),
		layout: lay,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	builtin := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if r.Time.IsZero() {
		builtin = builtin[1:]
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			builtin = append(builtin, slog.String(
				slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	var fields []field
	for _, a := range builtin {
		fields = h.flatten(fields, "", nil, a)
	}

	fields = append(fields, h.fields...)

	prefix := strings.Join(h.groups, ".")

	r.Attrs(func(a slog.Attr) bool {
		fields = h.flatten(fields, prefix, h.groups, a)

		return true
	})

	buf := new(bytes.Buffer)

	switch h.layout {
	case jsonLayout:
		h.writeJSON(buf, r.Level, fields)
	default:
		h.writeText(buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = slices.Clip(h.fields)

	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		c.fields = h.flatten(c.fields, prefix, h.groups, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

// flatten appends a to fields, resolving values and expanding groups.
func (h *prettyHandler) flatten(
	fields []field,
	prefix string,
	groups []string,
	a slog.Attr,
) []field {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup && h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return fields
		}

		if a.Key != "" {
			prefix = join(prefix, a.Key)
			groups = append(slices.Clip(groups), a.Key)
		}

		for _, ga := range attrs {
			fields = h.flatten(fields, prefix, groups, ga)
		}

		return fields
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{key: join(prefix, a.Key), value: a.Value})
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	level slog.Level,
	fields []field,
) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.value(level, f))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	level slog.Level,
	fields []field,
) {
	buf.WriteString("{\n")

	for i, f := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteString(": ")
		buf.WriteString(h.value(level, f))
	}

	buf.WriteString("\n}\n")
}

// value renders the value of f. The level field takes the color of the
// record level.
func (h *prettyHandler) value(level slog.Level, f field) string {
	v := f.value
	p := h.style

	if f.key == slog.LevelKey {
		return p.levelStyle(level).Render(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.time.Render(v.Time().Format(time.RFC3339))
	}

	switch x := v.Any().(type) {
	case nil:
		return p.null.Render("null")
	case slog.Level:
		return p.levelStyle(x).Render(Level(x).String())
	case error:
		return p.str.Render(x.Error())
	default:
		return p.str.Render(fmt.Sprint(x))
	}
}
