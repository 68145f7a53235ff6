package lexgen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Translate rewrites a flex-style pattern into Go regexp syntax. Macro
// references ({name}) expand to the already translated macro body. A leading
// '^' is stripped and reported through bol: the caller must only try the
// pattern at the beginning of a line.
func Translate(pattern string, macros map[string]string) (re string, bol bool, err error) {
	return translate(pattern, macros, true)
}

// Resolve translates pattern and checks that the result compiles. Patterns
// such as "([^"\\]|\\.)*" are not valid when '"' quotes, so when the quoted
// reading fails the pattern is retried with '"' as an ordinary character.
func Resolve(pattern string, macros map[string]string) (re string, bol bool, err error) {
	re, bol, err = translate(pattern, macros, true)
	if err == nil {
		if _, err = regexp.Compile(re); err == nil {
			return re, bol, nil
		}
	}
	if !strings.Contains(pattern, `"`) {
		return "", false, err
	}
	lre, lbol, lerr := translate(pattern, macros, false)
	if lerr != nil {
		return "", false, err
	}
	if _, lerr = regexp.Compile(lre); lerr != nil {
		return "", false, err
	}
	return lre, lbol, nil
}

func translate(pattern string, macros map[string]string, quotes bool) (re string, bol bool, err error) {
	var b strings.Builder
	i := 0
	if strings.HasPrefix(pattern, "^") {
		bol = true
		i = 1
	}

	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '"':
			if !quotes {
				b.WriteByte('"')
				i++
				continue
			}
			end, lit, err := readQuoted(pattern, i)
			if err != nil {
				return "", false, err
			}
			b.WriteString("(?:" + regexp.QuoteMeta(lit) + ")")
			i = end
		case '[':
			end, class, err := readClass(pattern, i)
			if err != nil {
				return "", false, err
			}
			b.WriteString(class)
			i = end
		case '{':
			close := strings.IndexByte(pattern[i:], '}')
			if close < 0 {
				return "", false, fmt.Errorf("unterminated '{' at offset %d", i)
			}
			body := pattern[i+1 : i+close]
			if body == "" {
				return "", false, fmt.Errorf("empty '{}' at offset %d", i)
			}
			if isDigit(body[0]) || body[0] == ',' {
				b.WriteString("{" + body + "}")
			} else {
				m, ok := macros[body]
				if !ok {
					return "", false, fmt.Errorf("unknown macro {%s}", body)
				}
				b.WriteString("(?:" + m + ")")
			}
			i += close + 1
		case '\\':
			if i+1 >= len(pattern) {
				return "", false, fmt.Errorf("trailing backslash")
			}
			esc, n := translateEscape(pattern[i+1:])
			b.WriteString(esc)
			i += 1 + n
		case '/':
			return "", false, fmt.Errorf("trailing context '/' is not supported (escape it as \\/)")
		default:
			_, size := utf8.DecodeRuneInString(pattern[i:])
			b.WriteString(pattern[i : i+size])
			i += size
		}
	}
	return b.String(), bol, nil
}

// translateEscape converts the escape following a backslash and reports how
// many bytes of s it consumed.
func translateEscape(s string) (string, int) {
	c := s[0]
	switch c {
	case 'b':
		return `\x08`, 1
	case 'e':
		return `\x1b`, 1
	case '/', '"':
		return regexp.QuoteMeta(string(c)), 1
	case 'a', 'f', 'n', 'r', 't', 'v', 'd', 'D', 's', 'S', 'w', 'W':
		return `\` + string(c), 1
	case 'x':
		n := 1
		for n < len(s) && n < 3 && isHex(s[n]) {
			n++
		}
		return `\x` + s[1:n], n
	}
	if c >= '0' && c <= '7' {
		n := 1
		for n < len(s) && n < 3 && s[n] >= '0' && s[n] <= '7' {
			n++
		}
		return `\` + s[:n], n
	}
	r, size := utf8.DecodeRuneInString(s)
	return regexp.QuoteMeta(string(r)), size
}

// readQuoted reads a "..." literal starting at pattern[start] and returns the
// offset just past it together with the unescaped text.
func readQuoted(pattern string, start int) (int, string, error) {
	var lit strings.Builder
	i := start + 1
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '"':
			return i + 1, lit.String(), nil
		case '\\':
			if i+1 >= len(pattern) {
				return 0, "", fmt.Errorf("unterminated string at offset %d", start)
			}
			lit.WriteString(Unescape(pattern[i : i+2]))
			i += 2
		default:
			lit.WriteByte(c)
			i++
		}
	}
	return 0, "", fmt.Errorf("unterminated string at offset %d", start)
}

// readClass copies a bracket expression, translating escapes Go does not share
// with flex.
func readClass(pattern string, start int) (int, string, error) {
	var b strings.Builder
	b.WriteByte('[')
	i := start + 1
	if i < len(pattern) && pattern[i] == '^' {
		b.WriteByte('^')
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		b.WriteString(`\]`)
		i++
	}
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == ']':
			b.WriteByte(']')
			return i + 1, b.String(), nil
		case c == '[' && strings.HasPrefix(pattern[i:], "[:"):
			close := strings.Index(pattern[i:], ":]")
			if close < 0 {
				return 0, "", fmt.Errorf("unterminated character class at offset %d", i)
			}
			b.WriteString(pattern[i : i+close+2])
			i += close + 2
		case c == '[':
			b.WriteString(`\[`)
			i++
		case c == '\\':
			if i+1 >= len(pattern) {
				return 0, "", fmt.Errorf("unterminated character class at offset %d", start)
			}
			esc, n := translateEscape(pattern[i+1:])
			b.WriteString(esc)
			i += 1 + n
		default:
			b.WriteByte(c)
			i++
		}
	}
	return 0, "", fmt.Errorf("unterminated character class at offset %d", start)
}

// Unescape resolves C-style escapes in quoted DSL text.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
