// Package lquery implements the glob-style path pattern language used for
// wildcard route matching. Patterns are dot-separated segments:
//
//	tech            the literal label "tech"
//	back*           a label starting with "back"
//	*               any number of labels, including none
//	**              same as *
//	*{2}            exactly two labels
//	*{1,}           one or more labels
//	*{1,3}          between one and three labels
//
// A pattern compiles to an anchored regular expression over the path with a
// leading separator ("." + path), and to PostgreSQL lquery text.
package lquery

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidPattern is the sentinel wrapped by every PatternError.
var ErrInvalidPattern = errors.New("invalid path pattern")

// PatternError describes a malformed pattern segment.
type PatternError struct {
	Pattern string
	Segment int
	Reason  string
}

func (e *PatternError) Error() string {
	if e.Segment < 0 {
		return fmt.Sprintf("invalid path pattern %q: %s", e.Pattern, e.Reason)
	}
	return fmt.Sprintf("invalid path pattern %q: segment %d: %s", e.Pattern, e.Segment, e.Reason)
}

func (e *PatternError) Unwrap() error { return ErrInvalidPattern }

type elemKind int

const (
	elemLiteral elemKind = iota
	elemPrefix
	elemLabels
)

// maxRepeat is the largest quantifier bound RE2 accepts.
const maxRepeat = 1000

// element is one parsed segment. For elemLabels, max < 0 means unbounded.
type element struct {
	kind     elemKind
	text     string
	min, max int
}

// Pattern is a compiled path pattern, safe for concurrent use.
type Pattern struct {
	source string
	elems  []element
	re     *regexp.Regexp
}

// Compile parses a pattern.
func Compile(pattern string) (*Pattern, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, &PatternError{Pattern: pattern, Reason: "empty pattern"}
	}
	p := &Pattern{source: pattern}
	for i, seg := range strings.Split(pattern, ".") {
		el, err := parseSegment(seg)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Segment: i, Reason: err.Error()}
		}
		p.elems = append(p.elems, el)
	}
	re, err := regexp.Compile(p.Regex())
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Segment: -1, Reason: err.Error()}
	}
	p.re = re
	return p, nil
}

func parseSegment(seg string) (element, error) {
	switch {
	case seg == "":
		return element{}, errors.New("empty segment")
	case seg == "*", seg == "**":
		return element{kind: elemLabels, min: 0, max: -1}, nil
	case strings.HasPrefix(seg, "*{"):
		return parseQuantifier(seg)
	}

	text := seg
	kind := elemLiteral
	if strings.HasSuffix(text, "*") {
		text = strings.TrimSuffix(text, "*")
		kind = elemPrefix
	}
	if text == "" {
		return element{}, errors.New("empty label")
	}
	for i := 0; i < len(text); i++ {
		if !isLabelChar(text[i]) {
			return element{}, fmt.Errorf("unexpected character %q", text[i])
		}
	}
	return element{kind: kind, text: text}, nil
}

func parseQuantifier(seg string) (element, error) {
	if !strings.HasSuffix(seg, "}") {
		return element{}, errors.New("unterminated quantifier")
	}
	body := seg[2 : len(seg)-1]
	lo, hi, ranged := strings.Cut(body, ",")

	min, err := strconv.Atoi(lo)
	if err != nil || min < 0 {
		return element{}, fmt.Errorf("bad quantifier %q", body)
	}
	max := min
	if ranged {
		if hi == "" {
			max = -1
		} else if max, err = strconv.Atoi(hi); err != nil || max < min {
			return element{}, fmt.Errorf("bad quantifier %q", body)
		}
	}
	if min > maxRepeat || max > maxRepeat {
		return element{}, fmt.Errorf("quantifier %q exceeds %d", body, maxRepeat)
	}
	return element{kind: elemLabels, min: min, max: max}, nil
}

func isLabelChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-'
}

// Source returns the pattern text as written.
func (p *Pattern) Source() string { return p.source }

// Regex returns an anchored POSIX-compatible expression that matches
// "." + path. Only constructs shared by Go, PostgreSQL and MySQL are used.
func (p *Pattern) Regex() string {
	var sb strings.Builder
	sb.WriteByte('^')
	for _, el := range p.elems {
		switch el.kind {
		case elemLiteral:
			sb.WriteString(`\.` + el.text)
		case elemPrefix:
			sb.WriteString(`\.` + el.text + `[^.]*`)
		case elemLabels:
			sb.WriteString(`(\.[^.]+)`)
			sb.WriteString(quantifier(el.min, el.max))
		}
	}
	sb.WriteByte('$')
	return sb.String()
}

// Lquery renders the pattern as PostgreSQL lquery text.
func (p *Pattern) Lquery() string {
	parts := make([]string, 0, len(p.elems))
	for _, el := range p.elems {
		switch el.kind {
		case elemLiteral:
			parts = append(parts, el.text)
		case elemPrefix:
			parts = append(parts, el.text+"*")
		case elemLabels:
			if el.min == 0 && el.max < 0 {
				parts = append(parts, "*")
			} else {
				parts = append(parts, "*"+quantifier(el.min, el.max))
			}
		}
	}
	return strings.Join(parts, ".")
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString("." + path)
}

func quantifier(min, max int) string {
	switch {
	case min == 0 && max < 0:
		return "*"
	case max < 0:
		return fmt.Sprintf("{%d,}", min)
	case min == max:
		return fmt.Sprintf("{%d}", min)
	default:
		return fmt.Sprintf("{%d,%d}", min, max)
	}
}

// ToRegex compiles pattern and returns its regular expression.
func ToRegex(pattern string) (string, error) {
	p, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return p.Regex(), nil
}

// ToLquery compiles pattern and returns its lquery rendering.
func ToLquery(pattern string) (string, error) {
	p, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return p.Lquery(), nil
}

// Match compiles pattern and tests path against it.
func Match(pattern, path string) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(path), nil
}
