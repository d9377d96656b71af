// Package markup parses the embedded-text sublanguage used for shape
// labels. Text is a sequence of literal characters and script runs: a
// run begins with `_` (subscript) or `^` (superscript) followed by a
// single character or a braced group. Braces nest, script runs nest,
// and `\_`, `\^`, `\{` escape the markup characters.
package markup

import "fmt"

// Script tags a run as normal text, subscript, or superscript.
type Script int

const (
	Normal Script = iota
	Sub
	Sup
)

// String returns the string representation of a Script.
func (s Script) String() string {
	switch s {
	case Sub:
		return "sub"
	case Sup:
		return "sup"
	default:
		return "normal"
	}
}

// Run is a node in the parsed markup tree. Leaf runs carry Text; a
// braced script run carries its parsed contents in Children. Depth is
// the script nesting depth, 0 for top-level text.
type Run struct {
	Script   Script
	Depth    int
	Text     string
	Children []Run
}

// ParseError reports malformed markup. The edit that produced it must
// be rejected; callers keep the prior valid text.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup: %s at offset %d", e.Msg, e.Offset)
}

type parser struct {
	in  []rune
	pos int
}

// Parse parses the markup string into a tree of runs.
func Parse(input string) ([]Run, error) {
	p := &parser{in: []rune(input)}
	runs, err := p.sequence(Normal, 0, false)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// sequence parses runs until end of input, or until the matching `}`
// when inGroup is set. Literal text flushes as leaves tagged with the
// enclosing script and depth.
func (p *parser) sequence(script Script, depth int, inGroup bool) ([]Run, error) {
	var runs []Run
	var buf []rune

	flush := func() {
		if len(buf) == 0 {
			return
		}
		text := string(buf)
		buf = buf[:0]
		if n := len(runs); n > 0 && runs[n-1].Script == script && runs[n-1].Children == nil {
			runs[n-1].Text += text
			return
		}
		runs = append(runs, Run{Script: script, Depth: depth, Text: text})
	}

	for p.pos < len(p.in) {
		ch := p.in[p.pos]
		switch {
		case ch == '\\':
			p.pos++
			if p.pos < len(p.in) {
				buf = append(buf, p.in[p.pos])
				p.pos++
			} else {
				buf = append(buf, ch)
			}
		case ch == '}' && inGroup:
			p.pos++
			flush()
			return runs, nil
		case ch == '_' || ch == '^':
			p.pos++
			tag := Sub
			if ch == '^' {
				tag = Sup
			}
			if p.pos >= len(p.in) {
				// Trailing marker with nothing to scope: literal.
				buf = append(buf, ch)
				continue
			}
			flush()
			if p.in[p.pos] == '{' {
				p.pos++
				children, err := p.sequence(tag, depth+1, true)
				if err != nil {
					return nil, err
				}
				runs = append(runs, Run{Script: tag, Depth: depth + 1, Children: children})
			} else {
				// Single-character run; an escape still counts as one.
				c := p.in[p.pos]
				p.pos++
				if c == '\\' && p.pos < len(p.in) {
					c = p.in[p.pos]
					p.pos++
				}
				if c == '}' && inGroup {
					// The marker was the last character of this group.
					buf = append(buf, ch)
					p.pos--
					continue
				}
				runs = append(runs, Run{Script: tag, Depth: depth + 1, Text: string(c)})
			}
		default:
			buf = append(buf, ch)
			p.pos++
		}
	}
	if inGroup {
		return nil, &ParseError{Offset: len(p.in), Msg: "unterminated group"}
	}
	flush()
	return runs, nil
}

// Flatten returns the leaf runs of a parsed tree in reading order.
// Container runs contribute their descendants only.
func Flatten(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Children != nil {
			out = append(out, Flatten(r.Children)...)
			continue
		}
		out = append(out, r)
	}
	return out
}

// PlainText returns the concatenated literal text of a parsed tree,
// markup stripped.
func PlainText(runs []Run) string {
	var out string
	for _, r := range Flatten(runs) {
		out += r.Text
	}
	return out
}
