package parser

import "gramgrep/internal/ast"

// ParseSource parses a configuration file. The returned config is usable
// only when both error slices are empty.
func ParseSource(path string, source string) (*ast.Config, []ParseError, []ScanError) {
	scanner := NewScanner(source)
	tokens := scanner.ScanTokens()
	offset, line := scanner.Rest()

	parser := NewParser(path, source, tokens)
	config := parser.ParseConfig(offset, line)

	return config, parser.errors, scanner.errors
}
