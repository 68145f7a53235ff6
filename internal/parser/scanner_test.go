package parser

import (
	"testing"
)

func TestDirectivesAndSections(t *testing.T) {
	input := "%token Name 'x'\n%left '+' '-'\n%%\nexpr: expr '+' expr;\n%%\n[a-z]+ Name\n"
	expected := []TokenType{
		DIRECTIVE, IDENTIFIER, LITERAL,
		DIRECTIVE, LITERAL, LITERAL,
		SECTION,
		IDENTIFIER, COLON, IDENTIFIER, LITERAL, IDENTIFIER, SEMICOLON,
		SECTION, EOF,
	}

	scanner := NewScanner(input)
	tokens := scanner.ScanTokens()

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
	if tokens[0].Lexeme != "token" {
		t.Errorf("expected directive name 'token', got %q", tokens[0].Lexeme)
	}

	offset, line := scanner.Rest()
	if line != 6 || input[offset:] != "[a-z]+ Name\n" {
		t.Errorf("unexpected rest: line %d %q", line, input[offset:])
	}
}

func TestRuleOperators(t *testing.T) {
	input := `a: (b | c)+ [d] e? f* | %empty %prec X;`
	expected := []TokenType{
		IDENTIFIER, COLON, LEFT_PAREN, IDENTIFIER, PIPE, IDENTIFIER, RIGHT_PAREN, PLUS,
		LEFT_BRACKET, IDENTIFIER, RIGHT_BRACKET, IDENTIFIER, QUESTION, IDENTIFIER, STAR,
		PIPE, DIRECTIVE, DIRECTIVE, IDENTIFIER, SEMICOLON, EOF,
	}

	tokens := NewScanner(input).ScanTokens()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Type != exp {
			t.Errorf("token %d: expected %s, got %s", i, exp, tokens[i].Type)
		}
	}
}

func TestLiteralEscapes(t *testing.T) {
	tokens := NewScanner(`'\n' "it's" '\''`).ScanTokens()

	want := []string{"\n", "it's", "'"}
	for i, w := range want {
		if tokens[i].Type != LITERAL || tokens[i].Lexeme != w {
			t.Errorf("expected LITERAL %q, got %s %q", w, tokens[i].Type, tokens[i].Lexeme)
		}
	}
}

func TestActionBlock(t *testing.T) {
	input := "x: y { print('}'); match = $1; };"
	tokens := NewScanner(input).ScanTokens()

	if tokens[3].Type != ACTION {
		t.Fatalf("expected ACTION, got %s", tokens[3].Type)
	}
	if tokens[3].Lexeme != " print('}'); match = $1; " {
		t.Errorf("unexpected action text %q", tokens[3].Lexeme)
	}
	if tokens[3].Position.Column != 6 {
		t.Errorf("expected action at column 6, got %d", tokens[3].Position.Column)
	}
	if tokens[4].Type != SEMICOLON {
		t.Errorf("expected SEMICOLON after action, got %s", tokens[4].Type)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// line comment\n%token /* inline */ A\n"
	tokens := NewScanner(input).ScanTokens()

	if len(tokens) != 3 || tokens[0].Type != DIRECTIVE || tokens[1].Lexeme != "A" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
	if tokens[0].Position.Line != 2 || tokens[0].Position.Column != 1 {
		t.Errorf("expected directive at 2:1, got %d:%d", tokens[0].Position.Line, tokens[0].Position.Column)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"'abc", "Unterminated literal."},
		{"a: b { c", "Unterminated action block."},
		{"/* open", "Unterminated block comment."},
		{"a: b @;", "Unexpected character: '@'"},
	}

	for _, tt := range tests {
		scanner := NewScanner(tt.input)
		scanner.ScanTokens()
		if len(scanner.errors) == 0 {
			t.Errorf("%q: expected error", tt.input)
			continue
		}
		if scanner.errors[0].Message != tt.msg {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.msg, scanner.errors[0].Message)
		}
	}
}
