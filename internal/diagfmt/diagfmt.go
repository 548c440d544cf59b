// Package diagfmt renders diagnostics for the terminal: severity
// coloring, file/line/column resolution, and a caret line under the
// offending source.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sv2v/internal/diag"
	"sv2v/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	locColor     = color.New(color.Bold)
)

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	}
	return infoColor
}

// Options controls rendering.
type Options struct {
	Color bool
}

// Write renders one diagnostic. The file set may be nil when no span
// information is available.
func Write(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opt Options) {
	paint := severityColor(d.Severity)
	label := strings.ToLower(d.Severity.String())
	if opt.Color {
		label = paint.Sprint(label)
	}

	loc := locate(d.Primary, fs)
	if loc != "" {
		if opt.Color {
			loc = locColor.Sprint(loc)
		}
		fmt.Fprintf(w, "%s: %s: [%s] %s\n", loc, label, d.Code, d.Message)
	} else {
		fmt.Fprintf(w, "%s: [%s] %s\n", label, d.Code, d.Message)
	}

	writeSourceLine(w, d.Primary, fs, opt)
	for _, note := range d.Notes {
		fmt.Fprintf(w, "  note: %s\n", note.Msg)
		writeSourceLine(w, note.Span, fs, opt)
	}
}

func locate(span source.Span, fs *source.FileSet) string {
	if fs == nil || span.Empty() && span.Start == 0 {
		return ""
	}
	if int(span.File) >= fs.Len() {
		return ""
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

// writeSourceLine prints the offending line with a caret run under the
// span, aligned by display width.
func writeSourceLine(w io.Writer, span source.Span, fs *source.FileSet, opt Options) {
	if fs == nil || (span.Empty() && span.Start == 0) || int(span.File) >= fs.Len() {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}

	prefix := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", prefix, line)

	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	pad := runewidth.StringWidth(line[:col-1])
	width := 1
	if end.Line == start.Line && int(end.Col) > col {
		width = runewidth.StringWidth(line[col-1 : min(len(line), int(end.Col)-1)])
		if width < 1 {
			width = 1
		}
	}
	caret := strings.Repeat("^", width)
	if opt.Color {
		caret = errorColor.Sprint(caret)
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", len(prefix)), strings.Repeat(" ", pad), caret)
}
