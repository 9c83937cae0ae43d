package rules

import "fmt"

// Modifier is the quantifier attached to a matcher.
type Modifier int

const (
	ModOne          Modifier = iota // exactly one
	ModOptional                     // ?  zero or one, greedy
	ModOptionalLazy                 // ?? zero or one, lazy
	ModStar                         // *  zero or more, greedy
	ModStarLazy                     // *? zero or more, lazy
	ModPlus                         // +  one or more, greedy
	ModPlusLazy                     // +? one or more, lazy
	ModStart                        // ^  start of siblings, zero width
	ModEnd                          // $  end of siblings, zero width
)

var modifierText = map[Modifier]string{
	ModOne:          "",
	ModOptional:     "?",
	ModOptionalLazy: "??",
	ModStar:         "*",
	ModStarLazy:     "*?",
	ModPlus:         "+",
	ModPlusLazy:     "+?",
	ModStart:        "^",
	ModEnd:          "$",
}

// String returns the declarative spelling of the modifier.
func (m Modifier) String() string {
	if s, ok := modifierText[m]; ok {
		return s
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}

// ParseModifier parses the declarative spelling of a modifier.
func ParseModifier(s string) (Modifier, error) {
	for m, text := range modifierText {
		if text == s {
			return m, nil
		}
	}
	return ModOne, fmt.Errorf("unknown mod %q (must be one of ?, ??, *, *?, +, +?, ^, $)", s)
}

// Skippable reports whether the matcher may consume nothing.
func (m Modifier) Skippable() bool {
	switch m {
	case ModOptional, ModOptionalLazy, ModStar, ModStarLazy:
		return true
	}
	return false
}

// Lazy reports whether the modifier prefers consuming fewer tokens.
func (m Modifier) Lazy() bool {
	return m == ModOptionalLazy || m == ModStarLazy || m == ModPlusLazy
}

// Repeats reports whether the matcher may consume more than one token.
func (m Modifier) Repeats() bool {
	switch m {
	case ModStar, ModStarLazy, ModPlus, ModPlusLazy:
		return true
	}
	return false
}

// Anchor reports whether the modifier is a zero-width anchor.
func (m Modifier) Anchor() bool {
	return m == ModStart || m == ModEnd
}

// AfterOne returns the modifier that applies once the matcher has consumed a
// token: one-or-more becomes zero-or-more.
func (m Modifier) AfterOne() Modifier {
	switch m {
	case ModPlus:
		return ModStar
	case ModPlusLazy:
		return ModStarLazy
	}
	return m
}
