package errors

// Error codes for gram-grep diagnostics.
//
// Error code ranges:
// E0100-E0199: Configuration syntax errors
// E0200-E0299: Configuration semantic errors
// E0300-E0399: Regular expression errors
// E0800-E0899: Warning codes

const (
	// E0101: Malformed directive, rule or section
	ErrorSyntax = "E0101"

	// E0102: Unterminated literal, comment or action block
	ErrorUnterminated = "E0102"

	// E0103: Action block does not parse
	ErrorActionSyntax = "E0103"

	// E0104: Unknown %directive or %option
	ErrorUnknownDirective = "E0104"

	// E0201: $n outside the alternative
	ErrorSymbolIndex = "E0201"

	// E0202: Range endpoints out of order
	ErrorEndpointOrder = "E0202"

	// E0203: %captures used together with action blocks
	ErrorCapturesWithActions = "E0203"

	// E0204: %start names an unknown nonterminal
	ErrorUndefinedStart = "E0204"

	// E0205: %prec names a token without precedence
	ErrorUndefinedPrecToken = "E0205"

	// E0206: Lexical rule uses an undeclared start condition
	ErrorUnknownStartCondition = "E0206"

	// E0207: {name} refers to an undefined macro
	ErrorUndefinedMacro = "E0207"

	// E0208: Symbol declared twice or used inconsistently
	ErrorDuplicateDeclaration = "E0208"

	// E0209: Grammar cannot be turned into a parse table
	ErrorInvalidGrammar = "E0209"

	// E0210: $n.first or $n.second used where text is expected
	ErrorEndpointInValue = "E0210"

	// E0211: Builtin called with the wrong number of arguments
	ErrorArgumentCount = "E0211"

	// E0301: Pattern does not compile
	ErrorBadPattern = "E0301"

	// E0302: replace_all pattern does not compile
	ErrorBadReplacePattern = "E0302"

	// E0801: LALR conflict resolved by default
	WarningConflict = "E0801"

	// E0802: Declared token never produced by the lexer
	WarningTokenWithoutRule = "E0802"

	// E0803: Lexer token never used by the grammar
	WarningUnusedToken = "E0803"

	// E0804: Nonterminal unreachable from the start symbol
	WarningUnreachableRule = "E0804"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Configuration file is malformed"
	case ErrorUnterminated:
		return "Literal, comment or action block is not terminated"
	case ErrorActionSyntax:
		return "Action block contains an invalid command"
	case ErrorUnknownDirective:
		return "Unknown directive or option"
	case ErrorSymbolIndex:
		return "Symbol index is outside the alternative"
	case ErrorEndpointOrder:
		return "Range start is after range end"
	case ErrorCapturesWithActions:
		return "Capture groups cannot be combined with actions"
	case ErrorUndefinedStart:
		return "Start symbol is not defined"
	case ErrorUndefinedPrecToken:
		return "Precedence token is not declared"
	case ErrorUnknownStartCondition:
		return "Start condition is not declared"
	case ErrorUndefinedMacro:
		return "Macro is not defined"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorInvalidGrammar:
		return "Grammar is not usable"
	case ErrorEndpointInValue:
		return "Endpoint qualifier used where text is expected"
	case ErrorArgumentCount:
		return "Builtin called with the wrong number of arguments"
	case ErrorBadPattern:
		return "Regular expression does not compile"
	case ErrorBadReplacePattern:
		return "replace_all regular expression does not compile"
	case WarningConflict:
		return "Parser conflict resolved by default rule"
	case WarningTokenWithoutRule:
		return "Token has no lexical rule"
	case WarningUnusedToken:
		return "Lexical rule token is not used in the grammar"
	case WarningUnreachableRule:
		return "Rule cannot be reached from the start symbol"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the error code represents a warning rather than an error
func IsWarning(code string) bool {
	return code >= "E0800" && code < "E0900"
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Syntax"
	case code >= "E0200" && code < "E0300":
		return "Semantic"
	case code >= "E0300" && code < "E0400":
		return "Regex"
	case code >= "E0800" && code < "E0900":
		return "Warning"
	default:
		return "Unknown"
	}
}
