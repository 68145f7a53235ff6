package parser

import (
	"fmt"
	"unicode"

	"gramgrep/internal/lexgen"
)

type Token struct {
	Type     TokenType
	Lexeme   string
	Position Position
}

// Scanner tokenizes the directive and grammar sections of a configuration
// file. It stops after the second %% line; the regex sections that follow
// are line oriented and read by the parser directly.
type Scanner struct {
	source      string
	tokens      []Token
	start       int
	current     int
	line        int
	startLine   int
	startColumn int
	column      int
	sections    int
	errors      []ScanError
}

type ScanError struct {
	Message  string
	Position Position // line, column, offset
	Length   int      // optional: how many characters it covers
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
		column: 1,
	}
}

func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() && s.sections < 2 {
		s.start = s.current
		s.startLine = s.line
		s.startColumn = s.column
		s.scanToken()
	}
	if s.sections == 2 {
		// the rest of the separator line belongs to nobody
		for !s.isAtEnd() && s.advance() != '\n' {
		}
	}
	s.tokens = append(s.tokens, Token{Type: EOF, Position: Position{Line: s.line, Column: s.column, Offset: s.current}})
	return s.tokens
}

// Rest returns where scanning stopped: the offset and line of the first
// line after the second %% separator.
func (s *Scanner) Rest() (offset, line int) {
	return s.current, s.line
}

func (s *Scanner) Errors() []ScanError {
	return s.errors
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(LEFT_PAREN, "(")
	case ')':
		s.addToken(RIGHT_PAREN, ")")
	case '[':
		s.addToken(LEFT_BRACKET, "[")
	case ']':
		s.addToken(RIGHT_BRACKET, "]")
	case ':':
		s.addToken(COLON, ":")
	case '|':
		s.addToken(PIPE, "|")
	case ';':
		s.addToken(SEMICOLON, ";")
	case '?':
		s.addToken(QUESTION, "?")
	case '*':
		s.addToken(STAR, "*")
	case '+':
		s.addToken(PLUS, "+")

	case '%':
		s.scanPercent()
	case '{':
		s.scanAction()
	case '/':
		s.scanSlash()

	case '\'', '"':
		s.scanLiteral(c)

	case ' ', '\r', '\t', '\n':
		// Ignore whitespace

	default:
		if isAlpha(c) {
			s.scanIdentifier()
		} else {
			s.reportError(fmt.Sprintf("Unexpected character: %q", c))
		}
	}
}

func (s *Scanner) scanPercent() {
	if s.matchNext('%') {
		s.addToken(SECTION, "%%")
		s.sections++
		return
	}
	if !isAlpha(s.peek()) {
		s.reportError("expected directive name after '%'")
		return
	}
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	s.addToken(DIRECTIVE, s.source[s.start+1:s.current])
}

func (s *Scanner) scanSlash() {
	switch {
	case s.matchNext('/'):
		for s.peek() != '\n' && !s.isAtEnd() {
			s.advance()
		}
	case s.matchNext('*'):
		for !s.isAtEnd() {
			if s.peek() == '*' && s.peekNext() == '/' {
				s.advance()
				s.advance()
				return
			}
			s.advance()
		}
		s.reportError("Unterminated block comment.")
	default:
		s.reportError("Unexpected character: '/'")
	}
}

func (s *Scanner) scanLiteral(quote byte) {
	for s.peek() != quote {
		if s.isAtEnd() || s.peek() == '\n' {
			s.reportError("Unterminated literal.")
			return
		}
		if s.advance() == '\\' && !s.isAtEnd() {
			s.advance()
		}
	}
	s.advance()
	raw := s.source[s.start+1 : s.current-1]
	if raw == "" {
		s.reportError("Empty literal.")
		return
	}
	s.addToken(LITERAL, lexgen.Unescape(raw))
}

// scanAction reads a brace balanced action block. Quoted strings inside it
// may contain braces.
func (s *Scanner) scanAction() {
	depth := 1
	for !s.isAtEnd() {
		c := s.advance()
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s.addToken(ACTION, s.source[s.start+1:s.current-1])
				return
			}
		case '\'', '"':
			for !s.isAtEnd() && s.peek() != c {
				if s.advance() == '\\' && !s.isAtEnd() {
					s.advance()
				}
			}
			if !s.isAtEnd() {
				s.advance()
			}
		}
	}
	s.reportError("Unterminated action block.")
}

func (s *Scanner) scanIdentifier() {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	s.addToken(IDENTIFIER, s.source[s.start:s.current])
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *Scanner) matchNext(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) addToken(tokenType TokenType, lexeme string) {
	s.tokens = append(s.tokens, Token{
		Type:   tokenType,
		Lexeme: lexeme,
		Position: Position{
			Line:   s.startLine,
			Column: s.startColumn,
			Offset: s.start,
		},
	})
}

func (s *Scanner) reportError(message string) {
	s.errors = append(s.errors, ScanError{
		Message:  message,
		Position: Position{Line: s.startLine, Column: s.startColumn, Offset: s.start},
		Length:   s.current - s.start,
	})
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}
