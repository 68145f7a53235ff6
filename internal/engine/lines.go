package engine

import (
	"bytes"
	"strconv"
	"strings"
)

// lineIndex maps offsets to 1-based line numbers. Lookups at increasing
// offsets resume from the previous one.
type lineIndex struct {
	buf  []byte
	base int
	line int
}

func (l *lineIndex) lookup(pos int) (int, string) {
	pos = min(max(pos, 0), len(l.buf))
	if l.line == 0 || pos < l.base {
		l.base, l.line = 0, 1
	}
	for {
		nl := bytes.IndexByte(l.buf[l.base:pos], '\n')
		if nl < 0 {
			break
		}
		l.base += nl + 1
		l.line++
	}
	end := len(l.buf)
	if nl := bytes.IndexByte(l.buf[l.base:], '\n'); nl >= 0 {
		end = l.base + nl
	}
	return l.line, strings.TrimSuffix(string(l.buf[l.base:end]), "\r")
}

// expand replaces $n in tmpl with captures[n]. Other text, including
// references past the last capture, is copied.
func expand(tmpl string, captures []string) string {
	if !strings.ContainsRune(tmpl, '$') {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		j := i + 1
		for tmpl[i] == '$' && j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(tmpl[i])
			continue
		}
		n, err := strconv.Atoi(tmpl[i+1 : j])
		if err == nil && n < len(captures) {
			b.WriteString(captures[n])
		} else {
			b.WriteString(tmpl[i:j])
		}
		i = j - 1
	}
	return b.String()
}
