package daterange

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

// Symbol names a calendar-anchored range.
type Symbol string

const (
	SymbolToday Symbol = "TODAY"
	SymbolMTD   Symbol = "MTD"
	SymbolQTD   Symbol = "QTD"
	SymbolYTD   Symbol = "YTD"
	SymbolAll   Symbol = "ALL"
)

var symbols = map[Symbol]struct{}{
	SymbolToday: {},
	SymbolMTD:   {},
	SymbolQTD:   {},
	SymbolYTD:   {},
	SymbolAll:   {},
}

// Token is a parsed range selector: either a symbol or a positive day count.
type Token struct {
	symbol Symbol
	days   int
}

// Days builds a "last N days" token.
func Days(n int) Token {
	return Token{days: n}
}

// Named builds a symbolic token.
func Named(s Symbol) Token {
	return Token{symbol: s}
}

// ParseToken accepts TODAY, MTD, QTD, YTD, ALL (any case), "30" or the preset form "30d".
// Anything else is coerced to a day count; a token that cannot be coerced is a
// configuration error.
func ParseToken(raw string) (Token, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := symbols[Symbol(value)]; ok {
		return Token{symbol: Symbol(value)}, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(value, "D"))
	if err != nil || n <= 0 {
		return Token{}, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("range %q is neither a known token nor a positive day count", raw))
	}
	return Token{days: n}, nil
}

// MustParse is ParseToken for static metric definitions.
func MustParse(raw string) Token {
	t, err := ParseToken(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Symbol returns the symbolic name, empty for day-count tokens.
func (t Token) Symbol() Symbol {
	return t.symbol
}

// DayCount returns N for "last N days" tokens.
func (t Token) DayCount() (int, bool) {
	return t.days, t.symbol == "" && t.days > 0
}

// IsAll reports whether the token selects every record.
func (t Token) IsAll() bool {
	return t.symbol == SymbolAll
}

// IsZero reports whether the token was never set.
func (t Token) IsZero() bool {
	return t.symbol == "" && t.days == 0
}

func (t Token) String() string {
	if t.symbol != "" {
		return string(t.symbol)
	}
	return strconv.Itoa(t.days)
}

// MarshalText implements encoding.TextMarshaler.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
