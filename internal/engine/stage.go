package engine

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/sarpdag/boyermoore"
	"gramgrep/internal/ir"
	"gramgrep/internal/lalr"
	"gramgrep/internal/lexgen"
	"gramgrep/internal/replace"
	"gramgrep/token"
)

// occurrence is one match of a stage inside a range. next is the part of
// the range offered to the following stage unless synthetic is set, in
// which case the following stage searches text.
type occurrence struct {
	start     int
	end       int
	next      lalr.Span
	synthetic bool
	text      string
	captures  []string
	edits     *replace.Map
}

// step runs stage depth against the range at depth and returns the range
// for the next stage.
func (r *run) step(depth int) (frame, bool) {
	f := &r.frames[depth]
	m := r.e.stages[depth]
	flags := m.MatcherFlags()
	switch {
	case flags.NegateAll:
		return r.negateAll(f, m)
	case flags.Negate:
		return r.negate(f, m)
	}

	occ, ok := r.find(f, m, f.cursor)
	if !ok {
		return frame{}, false
	}
	f.cursor = r.advance(f, m, occ)
	return r.child(f, m, occ), true
}

// negate offers the text between occurrences. An occurrence at the cursor
// is stepped over without offering anything.
func (r *run) negate(f *frame, m ir.Matcher) (frame, bool) {
	src := r.subject(f)
	for f.cursor < f.end {
		c := f.cursor
		occ, ok := r.find(f, m, c)
		if ok && occ.start == c {
			f.cursor = r.advance(f, m, occ)
			continue
		}
		end := f.end
		if ok {
			end = occ.start
		}
		f.cursor = end
		return r.child(f, m, region(src, c, end)), true
	}
	return frame{}, false
}

// negateAll passes the whole range on once if the stage finds nothing in
// it.
func (r *run) negateAll(f *frame, m ir.Matcher) (frame, bool) {
	if f.visited {
		return frame{}, false
	}
	f.visited = true
	f.cursor = f.end
	if _, found := r.find(f, m, f.start); found {
		return frame{}, false
	}
	return r.child(f, m, region(r.subject(f), f.start, f.end)), true
}

func region(src []byte, start, end int) occurrence {
	return occurrence{
		start:    start,
		end:      end,
		next:     lalr.Span{Start: start, End: end},
		captures: []string{string(src[start:end])},
	}
}

// advance returns the cursor after occ, at least one character past its
// start.
func (r *run) advance(f *frame, m ir.Matcher, occ occurrence) int {
	if occ.end > occ.start {
		return occ.end
	}
	return occ.start + charLen(r.subject(f), occ.start, m.MatcherFlags().Unicode)
}

func (r *run) child(f *frame, m ir.Matcher, occ occurrence) frame {
	c := frame{src: f.src, edits: occ.edits, captures: occ.captures}
	switch {
	case m.MatcherFlags().ExtendSearch:
		c.start, c.end = occ.end, f.end
	case occ.synthetic:
		c.src, c.owned = r.pushText(occ.text), true
		c.start, c.end = 0, len(occ.text)
	default:
		c.start, c.end = occ.next.Start, occ.next.End
	}
	c.cursor = c.start

	switch {
	case c.src < 0:
		c.origin = lalr.Span{Start: c.start, End: c.end}
	case f.src < 0:
		c.origin = lalr.Span{Start: occ.start, End: occ.end}
	default:
		c.origin = f.origin
	}
	return c
}

// find returns the first occurrence starting at or after from, skipping
// occurrences that break a word when the stage asks for whole words.
func (r *run) find(f *frame, m ir.Matcher, from int) (occurrence, bool) {
	src := r.subject(f)
	flags := m.MatcherFlags()
	for from < f.end {
		occ, ok := r.search(f, m, from)
		if !ok {
			return occurrence{}, false
		}
		if !flags.WholeWord || wholeWord(src, occ.start, occ.end, flags.Unicode) {
			return occ, true
		}
		from = occ.start + charLen(src, occ.start, flags.Unicode)
	}
	return occurrence{}, false
}

func (r *run) search(f *frame, m ir.Matcher, from int) (occurrence, bool) {
	src := r.subject(f)
	switch m := m.(type) {
	case *ir.TextMatcher:
		return searchText(src, m, from, f.end)
	case *ir.RegexMatcher:
		return searchRegex(src, m, from, f.end)
	case *ir.TokenMatcher:
		toks := r.tokens(f, m.Lexer)
		for i := firstToken(toks, from); i < len(toks); i++ {
			if toks[i].ID > 0 {
				return region(src, toks[i].Start, toks[i].End), true
			}
		}
		return occurrence{}, false
	case *ir.GrammarMatcher:
		return r.searchGrammar(f, m, from)
	}
	return occurrence{}, false
}

func searchText(src []byte, m *ir.TextMatcher, from, end int) (occurrence, bool) {
	window := src[from:end]
	if m.Fold != nil {
		loc := m.Fold.FindIndex(window)
		if loc == nil {
			return occurrence{}, false
		}
		return region(src, from+loc[0], from+loc[1]), true
	}
	i := boyermoore.Index(window, []byte(m.Pattern))
	if i < 0 {
		return occurrence{}, false
	}
	return region(src, from+i, from+i+len(m.Pattern)), true
}

// searchRegex reports the submatches as captures. A pattern anchored with
// '^' also matches at the start of the window, so such matches are
// dropped unless the window starts a line.
func searchRegex(src []byte, m *ir.RegexMatcher, from, end int) (occurrence, bool) {
	for from < end {
		loc := m.Regexp.FindSubmatchIndex(src[from:end])
		if loc == nil {
			return occurrence{}, false
		}
		s, e := from+loc[0], from+loc[1]
		if m.BOL && s > 0 && src[s-1] != '\n' {
			from = s + 1
			continue
		}
		occ := region(src, s, e)
		for g := 2; g+1 < len(loc); g += 2 {
			text := ""
			if loc[g] >= 0 {
				text = string(src[from+loc[g] : from+loc[g+1]])
			}
			occ.captures = append(occ.captures, text)
		}
		return occ, true
	}
	return occurrence{}, false
}

// tokens lexes the range once, from its start in the initial condition.
func (r *run) tokens(f *frame, lx *lexgen.Lexer) []token.Token {
	if f.lexed {
		return f.tokens
	}
	f.lexed = true
	src := r.subject(f)
	c := lexgen.Cursor{Pos: f.start}
	for {
		tok, next, ok := lx.Next(src, c, f.end)
		if !ok {
			break
		}
		f.tokens = append(f.tokens, tok)
		c = next
	}
	return f.tokens
}

func firstToken(toks []token.Token, from int) int {
	return sort.Search(len(toks), func(i int) bool { return toks[i].Start >= from })
}

func charLen(src []byte, i int, utf8Mode bool) int {
	if !utf8Mode || i >= len(src) {
		return 1
	}
	_, size := utf8.DecodeRune(src[i:])
	return max(size, 1)
}

func wordBefore(src []byte, i int, utf8Mode bool) bool {
	if i <= 0 {
		return false
	}
	if !utf8Mode {
		return isWordByte(src[i-1])
	}
	r, _ := utf8.DecodeLastRune(src[:i])
	return isWordRune(r)
}

func wordAt(src []byte, i int, utf8Mode bool) bool {
	if i >= len(src) {
		return false
	}
	if !utf8Mode {
		return isWordByte(src[i])
	}
	r, _ := utf8.DecodeRune(src[i:])
	return isWordRune(r)
}

// wholeWord reports whether neither end of [start, end) splits a word.
func wholeWord(src []byte, start, end int, utf8Mode bool) bool {
	if wordBefore(src, start, utf8Mode) && wordAt(src, start, utf8Mode) {
		return false
	}
	return !(wordBefore(src, end, utf8Mode) && wordAt(src, end, utf8Mode))
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
