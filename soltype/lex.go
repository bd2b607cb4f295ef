package soltype

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

type tokenKind byte

const (
	tkEOF tokenKind = iota
	tkSpace
	tkBigNum
	tkNumber
	tkString
	tkIdent
	tkPunct
)

func (k tokenKind) String() string {
	switch k {
	case tkEOF:
		return "eoi"
	case tkSpace:
		return "space"
	case tkBigNum, tkNumber:
		return "number"
	case tkString:
		return "string"
	case tkIdent:
		return "identifier"
	default:
		return "punct"
	}
}

// Token rules in priority order. Rules must not contain
// capturing groups: the group index identifies the rule.
var tokenRules = []struct {
	kind tokenKind
	re   string
}{
	{tkSpace, `\s+`},
	// the compiler elides long literals: 1157...(70 digits omitted)...9935
	{tkBigNum, `[0-9]+\.\.\.\([0-9]+ digits omitted\)\.\.\.[0-9]+`},
	{tkNumber, `[0-9]+`},
	{tkString, `(?:hex|unicode)?"(?:[^"\\]|\\.)*"`},
	{tkIdent, `[A-Za-z_$][A-Za-z0-9_$]*`},
	{tkPunct, `=>|[()\[\],./-]`},
}

type rules struct {
	token *regexp.Regexp
	ints  *regexp.Regexp
	bytes *regexp.Regexp
	fixed *regexp.Regexp
}

var grammar = sync.OnceValue(func() *rules {
	var alts []string
	for _, r := range tokenRules {
		alts = append(alts, "("+r.re+")")
	}
	return &rules{
		token: regexp.MustCompile(`\A(?:` + strings.Join(alts, "|") + `)`),
		ints:  regexp.MustCompile(`\A(u?)int([0-9]*)\z`),
		bytes: regexp.MustCompile(`\Abytes([0-9]*)\z`),
		fixed: regexp.MustCompile(`\A(u?)fixed(?:[0-9]+x[0-9]+)?\z`),
	}
})

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) is(text string) bool {
	return (t.kind == tkIdent || t.kind == tkPunct) && t.text == text
}

func (t token) isNumber() bool {
	return t.kind == tkNumber || t.kind == tkBigNum
}

// Splits s into tokens, dropping whitespace.
// The returned slice always ends with a tkEOF token.
func lex(s string) ([]token, error) {
	var (
		re   = grammar().token
		toks []token
	)
	for pos := 0; pos < len(s); {
		m := re.FindStringSubmatchIndex(s[pos:])
		if m == nil {
			return nil, &ParseError{
				Production: "token",
				Remaining:  s[pos:],
				Kind:       ErrMismatch,
				Err:        unexpectedChar(s[pos:]),
			}
		}
		for i := range tokenRules {
			if m[2+2*i] < 0 {
				continue
			}
			if k := tokenRules[i].kind; k != tkSpace {
				toks = append(toks, token{k, s[pos : pos+m[1]], pos})
			}
			break
		}
		pos += m[1]
	}
	return append(toks, token{tkEOF, "", len(s)}), nil
}

type charError rune

func (c charError) Error() string {
	return "unexpected character " + strconv.QuoteRune(rune(c))
}

func unexpectedChar(s string) error {
	for _, r := range s {
		return charError(r)
	}
	return charError(0)
}
