package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const columnGap = "  "

// palette holds the colors shared by the text widgets
type palette struct {
	title *color.Color
	muted *color.Color
	key   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title: color.New(color.Bold, color.FgCyan),
		muted: color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
	}
	if noColor {
		p.title.DisableColor()
		p.muted.DisableColor()
		p.key.DisableColor()
	}
	return p
}

// Align controls how a column is padded
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table prints rows under a header and a rule, each column as wide as
// its widest cell
type Table struct {
	w       io.Writer
	headers []string
	align   []Align
	rows    [][]string
	styles  map[int]func(cell string) *color.Color
	noColor bool
}

// TableOptions configures a Table
type TableOptions struct {
	NoColor bool
	// Align per column; missing entries are left aligned
	Align []Align
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{
		w:       w,
		headers: headers,
		align:   make([]Align, len(headers)),
		styles:  make(map[int]func(string) *color.Color),
	}
	if opts != nil {
		t.noColor = opts.NoColor
		copy(t.align, opts.Align)
	}
	return t
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// StyleColumn colors the cells of column col with the color style returns;
// a nil color leaves the cell plain
func (t *Table) StyleColumn(col int, style func(cell string) *color.Color) {
	t.styles[col] = style
}

func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()
	p := newPalette(t.noColor)

	cells := make([]string, len(widths))
	for i, h := range t.headers {
		cells[i] = p.title.Sprint(t.pad(h, i, widths[i]))
	}
	t.line(cells)

	for i, width := range widths {
		cells[i] = p.muted.Sprint(strings.Repeat("─", width))
	}
	t.line(cells)

	for _, row := range t.rows {
		cells = cells[:min(len(row), len(widths))]
		for i := range cells {
			text := t.pad(row[i], i, widths[i])
			if style := t.styles[i]; style != nil && !t.noColor {
				if c := style(row[i]); c != nil {
					text = c.Sprint(text)
				}
			}
			cells[i] = text
		}
		t.line(cells)
	}
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], displayWidth(row[i]))
		}
	}
	return widths
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.w, strings.Join(cells, columnGap))
}

func (t *Table) pad(s string, col, width int) string {
	if t.align[col] == AlignRight {
		return padLeft(s, width)
	}
	return padRight(s, width)
}

// displayWidth counts runes so box and check glyphs take one column
func displayWidth(s string) int {
	return utf8.RuneCountInString(s)
}

func padRight(s string, width int) string {
	if n := displayWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := displayWidth(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// KeyValueTable prints "key: value" lines with the values aligned
type KeyValueTable struct {
	w       io.Writer
	keys    []string
	values  []string
	noColor bool
}

func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{w: w, noColor: noColor}
}

func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		width = max(width, displayWidth(k)+1)
	}
	key := newPalette(t.noColor).key
	for i, k := range t.keys {
		key.Fprint(t.w, padRight(k+":", width))
		fmt.Fprintf(t.w, " %s\n", t.values[i])
	}
}

// Section is a title over indented lines, followed by a blank line
type Section struct {
	w       io.Writer
	title   string
	lines   []string
	noColor bool
}

func NewSection(w io.Writer, title string, noColor bool) *Section {
	return &Section{w: w, title: title, noColor: noColor}
}

func (s *Section) AddLine(line string) {
	s.lines = append(s.lines, line)
}

func (s *Section) Render() {
	p := newPalette(s.noColor)
	p.title.Fprintln(s.w, s.title)
	if len(s.lines) == 0 {
		p.muted.Fprintln(s.w, "  (empty)")
	}
	for _, line := range s.lines {
		fmt.Fprintf(s.w, "  %s\n", line)
	}
	fmt.Fprintln(s.w)
}

// Header prints title underlined to its width
func Header(w io.Writer, title string, noColor bool) {
	p := newPalette(noColor)
	p.title.Fprintln(w, title)
	p.muted.Fprintln(w, strings.Repeat("─", displayWidth(title)))
}
