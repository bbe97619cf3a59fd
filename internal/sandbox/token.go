package sandbox

// Package sandbox implements the isolation/capability discipline around
// untrusted strategy code: a small statement language is tokenized,
// parsed into a whitelisted AST, validated against a fixed capability
// surface, and interpreted per bar under a wall-clock budget. This is
// the systems-language analogue of parsing untrusted source with
// Python's ast module and running it against a restricted builtin
// namespace: no third-party expression-language parser is available to
// reach for here, so the tokenizer and parser are hand-written the way
// text/template/parse or regexp/syntax are in the standard library.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokIf
	tokElse
	tokState
	tokTrue
	tokFalse
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokComma
	tokDot
	tokAssign
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
)

type token struct {
	kind tokenKind
	text string
	num  float64
	line int
	col  int
}

var keywords = map[string]tokenKind{
	"if":    tokIf,
	"else":  tokElse,
	"state": tokState,
	"true":  tokTrue,
	"false": tokFalse,
}
