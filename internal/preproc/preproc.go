// Package preproc implements the subset of the SystemVerilog
// preprocessor the converter needs: object-like macros, conditional
// regions, and file inclusion. Unrecognized backtick directives pass
// through untouched and surface as directive items in the AST.
package preproc

import (
	"os"
	"path/filepath"
	"strings"

	"sv2v/internal/diag"
)

// Preprocessor carries the macro table and include search path across
// files of one run.
type Preprocessor struct {
	defines map[string]string
	incdirs []string
}

func New(defines map[string]string, incdirs []string) *Preprocessor {
	table := make(map[string]string, len(defines))
	for name, body := range defines {
		table[name] = body
	}
	return &Preprocessor{defines: table, incdirs: incdirs}
}

// Expand preprocesses the content of one file. The path is used to
// resolve relative includes and to label errors.
func (pp *Preprocessor) Expand(path string, content []byte) ([]byte, error) {
	lines := splitLines(string(content))
	var out strings.Builder
	state := &condStack{}
	if err := pp.expandLines(path, lines, state, &out); err != nil {
		return nil, err
	}
	if state.depth() != 0 {
		return nil, diag.New(diag.PpUnbalancedCond, "%s: unterminated `ifdef", path)
	}
	return []byte(out.String()), nil
}

type condFrame struct {
	active    bool // this branch is live
	taken     bool // some branch of this conditional was live
	parentOff bool
}

type condStack struct {
	frames []condFrame
}

func (cs *condStack) depth() int { return len(cs.frames) }

func (cs *condStack) live() bool {
	for _, fr := range cs.frames {
		if !fr.active || fr.parentOff {
			return false
		}
	}
	return true
}

func (cs *condStack) push(active bool) {
	cs.frames = append(cs.frames, condFrame{
		active:    active,
		taken:     active,
		parentOff: !cs.live(),
	})
}

func (cs *condStack) flip(active bool) bool {
	if len(cs.frames) == 0 {
		return false
	}
	fr := &cs.frames[len(cs.frames)-1]
	if fr.taken {
		fr.active = false
	} else {
		fr.active = active
		fr.taken = fr.taken || active
	}
	return true
}

func (cs *condStack) pop() bool {
	if len(cs.frames) == 0 {
		return false
	}
	cs.frames = cs.frames[:len(cs.frames)-1]
	return true
}

func (pp *Preprocessor) expandLines(path string, lines []string, state *condStack, out *strings.Builder) error {
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "`") {
			word, rest := splitDirective(trimmed)
			switch word {
			case "define":
				// gather continuation lines
				body := rest
				for strings.HasSuffix(body, "\\") && i+1 < len(lines) {
					i++
					body = strings.TrimSuffix(body, "\\") + "\n" + strings.TrimSpace(lines[i])
				}
				if state.live() {
					name, value := splitDefine(body)
					if name == "" {
						return diag.New(diag.PpBadDirective, "%s: malformed `define", path)
					}
					pp.defines[name] = value
				}
				continue
			case "undef":
				if state.live() {
					delete(pp.defines, strings.TrimSpace(rest))
				}
				continue
			case "ifdef", "ifndef":
				name := strings.TrimSpace(rest)
				_, defined := pp.defines[name]
				if word == "ifndef" {
					defined = !defined
				}
				state.push(defined)
				continue
			case "elsif":
				name := strings.TrimSpace(rest)
				_, defined := pp.defines[name]
				if !state.flip(defined) {
					return diag.New(diag.PpUnbalancedCond, "%s: `elsif without `ifdef", path)
				}
				continue
			case "else":
				if !state.flip(true) {
					return diag.New(diag.PpUnbalancedCond, "%s: `else without `ifdef", path)
				}
				continue
			case "endif":
				if !state.pop() {
					return diag.New(diag.PpUnbalancedCond, "%s: `endif without `ifdef", path)
				}
				continue
			case "include":
				if !state.live() {
					continue
				}
				name := strings.Trim(strings.TrimSpace(rest), "\"<>")
				included, incPath, err := pp.readInclude(path, name)
				if err != nil {
					return err
				}
				if err := pp.expandLines(incPath, splitLines(string(included)), state, out); err != nil {
					return err
				}
				continue
			}
			// any other directive passes through (possibly with macro
			// uses in its arguments)
		}

		if !state.live() {
			continue
		}
		expanded, err := pp.substitute(path, line, 0)
		if err != nil {
			return err
		}
		out.WriteString(expanded)
		out.WriteString("\n")
	}
	return nil
}

func (pp *Preprocessor) readInclude(from, name string) ([]byte, string, error) {
	dirs := append([]string{filepath.Dir(from)}, pp.incdirs...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		content, err := os.ReadFile(candidate) // #nosec G304 -- resolved include path
		if err == nil {
			return content, candidate, nil
		}
	}
	return nil, "", diag.New(diag.PpMissingInclude,
		"%s: could not find include file %q", from, name)
}

const maxExpandDepth = 64

// substitute replaces `NAME macro uses outside strings and comments.
func (pp *Preprocessor) substitute(path, line string, depth int) (string, error) {
	if depth > maxExpandDepth {
		return "", diag.New(diag.PpRecursiveExpand, "%s: recursive macro expansion", path)
	}
	var out strings.Builder
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == '"':
			end := scanString(line, i)
			out.WriteString(line[i:end])
			i = end
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			out.WriteString(line[i:])
			i = len(line)
		case c == '`' && i+1 < len(line) && isMacroStart(line[i+1]):
			j := i + 1
			for j < len(line) && isMacroChar(line[j]) {
				j++
			}
			name := line[i+1 : j]
			if body, ok := pp.defines[name]; ok {
				expanded, err := pp.substitute(path, body, depth+1)
				if err != nil {
					return "", err
				}
				out.WriteString(expanded)
			} else {
				// unknown word: keep the directive for the parser
				out.WriteString(line[i:j])
			}
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

func scanString(line string, start int) int {
	i := start + 1
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		}
		i++
	}
	return len(line)
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func splitDirective(line string) (word, rest string) {
	line = strings.TrimPrefix(line, "`")
	for i := 0; i < len(line); i++ {
		if !isMacroChar(line[i]) {
			return line[:i], strings.TrimSpace(line[i:])
		}
	}
	return line, ""
}

func splitDefine(body string) (name, value string) {
	for i := 0; i < len(body); i++ {
		if !isMacroChar(body[i]) {
			return body[:i], strings.TrimSpace(body[i:])
		}
	}
	return body, ""
}

func isMacroStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isMacroChar(c byte) bool {
	return isMacroStart(c) || ('0' <= c && c <= '9')
}
