// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"strconv"
	"unicode/utf8"
)

// ScanRequires returns the static require references declared by a CommonJS
// source, in order of first occurrence and without duplicates.
//
// Only calls of the form require("literal") count. Comments, strings and the
// text of template literals are skipped, while code inside ${...} is scanned.
// Member calls such as obj.require("x") are ignored, and dynamic calls (require(name), require("a" + b)) are left for
// the host to handle. require("") and an unterminated literal argument are
// reported as *MalformedReferenceError.
//
// The scanner does not recognize regular expression literals; a quote inside
// one is treated as the start of a string that ends at the end of the line.
func ScanRequires(src []byte) ([]string, error) {
	s := &scanner{src: src, seen: make(map[string]bool)}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.refs, nil
}

type scanner struct {
	src []byte
	pos int
	// lastSig is the last byte outside whitespace and comments.
	lastSig byte
	refs    []string
	seen    map[string]bool
}

func (s *scanner) run() error {
	if len(s.src) >= 2 && s.src[0] == '#' && s.src[1] == '!' {
		s.pos = s.lineEnd(0)
	}
	return s.scan(false)
}

// spread stands in for lastSig after a "..." token so that it is not taken
// for a member access.
const spread = 0x01

// scan walks code until the end of input or, when inSubstitution is set,
// until the brace closing the current template substitution. s.pos is left
// just past that brace.
func (s *scanner) scan(inSubstitution bool) error {
	n := len(s.src)
	depth := 0
	for s.pos < n {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '/' && s.peek(1) == '/':
			s.pos = s.lineEnd(s.pos)
		case c == '/' && s.peek(1) == '*':
			s.pos = s.blockCommentEnd(s.pos)
		case c == '"' || c == '\'':
			_, end, _ := s.readString(s.pos)
			s.pos = end
			s.lastSig = c
		case c == '`':
			if err := s.template(); err != nil {
				return err
			}
			s.lastSig = c
		case c == '.' && s.peek(1) == '.' && s.peek(2) == '.':
			s.pos += 3
			s.lastSig = spread
		case isDigit(c):
			for s.pos < n && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			s.lastSig = c
		case isIdentStart(c):
			start := s.pos
			for s.pos < n && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			if string(s.src[start:s.pos]) == "require" && s.lastSig != '.' {
				if err := s.call(start); err != nil {
					return err
				}
				continue
			}
			s.lastSig = s.src[s.pos-1]
		case c == '{':
			depth++
			s.pos++
			s.lastSig = c
		case c == '}':
			s.pos++
			s.lastSig = c
			if depth > 0 {
				depth--
			} else if inSubstitution {
				return nil
			}
		default:
			s.pos++
			s.lastSig = c
		}
	}
	return nil
}

// call inspects the text after a require identifier starting at start.
// s.pos points just past the identifier.
func (s *scanner) call(start int) error {
	s.lastSig = 'e'
	j := s.skipTrivia(s.pos)
	if j >= len(s.src) || s.src[j] != '(' {
		return nil
	}
	j = s.skipTrivia(j + 1)
	if j >= len(s.src) || (s.src[j] != '"' && s.src[j] != '\'') {
		s.pos = j
		s.lastSig = '('
		return nil
	}

	value, end, reason := s.readString(j)
	if reason != "" {
		return &MalformedReferenceError{
			Reference: string(s.src[j+1 : end]),
			Reason:    reason,
			Offset:    start,
		}
	}

	k := s.skipTrivia(end)
	if k >= len(s.src) || s.src[k] != ')' {
		// require("a" + b) and friends are dynamic.
		s.pos = end
		s.lastSig = s.src[j]
		return nil
	}
	if value == "" {
		return &MalformedReferenceError{Reference: value, Reason: "empty reference", Offset: start}
	}

	if !s.seen[value] {
		s.seen[value] = true
		s.refs = append(s.refs, value)
	}
	s.pos = k + 1
	s.lastSig = ')'
	return nil
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *scanner) lineEnd(i int) int {
	for i < len(s.src) && s.src[i] != '\n' {
		i++
	}
	return i
}

func (s *scanner) blockCommentEnd(i int) int {
	for i += 2; i+1 < len(s.src); i++ {
		if s.src[i] == '*' && s.src[i+1] == '/' {
			return i + 2
		}
	}
	return len(s.src)
}

func (s *scanner) skipTrivia(i int) int {
	for i < len(s.src) {
		switch {
		case isSpace(s.src[i]):
			i++
		case s.src[i] == '/' && i+1 < len(s.src) && s.src[i+1] == '/':
			i = s.lineEnd(i)
		case s.src[i] == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			i = s.blockCommentEnd(i)
		default:
			return i
		}
	}
	return i
}

// template scans the template literal starting at s.pos and leaves s.pos
// just past its closing backtick. The code inside ${...} substitutions is
// scanned like any other code.
func (s *scanner) template() error {
	n := len(s.src)
	for s.pos++; s.pos < n; s.pos++ {
		switch s.src[s.pos] {
		case '\\':
			s.pos++
		case '`':
			s.pos++
			return nil
		case '$':
			if s.peek(1) == '{' {
				s.pos += 2
				s.lastSig = '{'
				if err := s.scan(true); err != nil {
					return err
				}
				s.pos--
			}
		}
	}
	return nil
}

// readString decodes the quoted literal starting at i. It returns the decoded
// value, the offset just past the closing quote and an empty reason, or, for
// an unterminated literal, the offset where scanning stopped and a reason.
func (s *scanner) readString(i int) (string, int, string) {
	quote := s.src[i]
	n := len(s.src)
	var buf []byte

	for i++; i < n; {
		c := s.src[i]
		switch {
		case c == quote:
			return string(buf), i + 1, ""
		case c == '\n' || c == '\r':
			return string(buf), i, "unterminated string literal"
		case c == '\\':
			if i+1 >= n {
				return string(buf), n, "unterminated string literal"
			}
			var consumed int
			buf, consumed = appendEscape(buf, s.src[i+1:])
			i += 1 + consumed
		default:
			buf = append(buf, c)
			i++
		}
	}
	return string(buf), n, "unterminated string literal"
}

// appendEscape decodes the escape sequence following a backslash and reports
// how many bytes of rest it consumed.
func appendEscape(buf, rest []byte) ([]byte, int) {
	switch e := rest[0]; e {
	case 'n':
		return append(buf, '\n'), 1
	case 't':
		return append(buf, '\t'), 1
	case 'r':
		return append(buf, '\r'), 1
	case 'b':
		return append(buf, '\b'), 1
	case 'f':
		return append(buf, '\f'), 1
	case 'v':
		return append(buf, '\v'), 1
	case '0':
		return append(buf, 0), 1
	case '\r':
		if len(rest) > 1 && rest[1] == '\n' {
			return buf, 2
		}
		return buf, 1
	case '\n':
		return buf, 1
	case 'x':
		if len(rest) >= 3 {
			if v, err := strconv.ParseUint(string(rest[1:3]), 16, 8); err == nil {
				return utf8.AppendRune(buf, rune(v)), 3
			}
		}
		return append(buf, e), 1
	case 'u':
		if len(rest) >= 5 && rest[1] != '{' {
			if v, err := strconv.ParseUint(string(rest[1:5]), 16, 32); err == nil {
				return utf8.AppendRune(buf, rune(v)), 5
			}
		}
		if len(rest) >= 3 && rest[1] == '{' {
			for k := 2; k < len(rest) && k < 10; k++ {
				if rest[k] == '}' {
					if v, err := strconv.ParseUint(string(rest[2:k]), 16, 32); err == nil {
						return utf8.AppendRune(buf, rune(v)), k + 1
					}
					break
				}
			}
		}
		return append(buf, e), 1
	default:
		return append(buf, e), 1
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
