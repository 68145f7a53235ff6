// Package token SPDX-License-Identifier: Apache-2.0
//
// Tokens exchanged between the lexer and the parser tables.
package token

// ID identifies a terminal. Non-negative values index the terminal table of
// the grammar the token was lexed for; EOF is always terminal 0.
type ID int

const (
	EOF ID = 0

	// Invalid marks input no lexical rule recognises.
	Invalid ID = -1

	// Skip marks rules whose matches are discarded (`skip()`).
	Skip ID = -2
)

// Token is a lexeme located by byte offsets into the scanned buffer.
type Token struct {
	ID    ID
	Start int
	End   int
}

func (t Token) Len() int {
	return t.End - t.Start
}

// Text returns the lexeme in src.
func (t Token) Text(src []byte) []byte {
	return src[t.Start:t.End]
}

func (t Token) Valid() bool {
	return t.ID >= 0
}
