package dialect

import (
	"strconv"
	"strings"
)

// scanState is the position of the placeholder scanner relative to string literals.
type scanState int

const (
	stateOutside scanState = iota
	stateInSingle
	stateInDouble
)

// tokenClass is the scanner's view of one input byte.
type tokenClass int

const (
	tokenOther tokenClass = iota
	tokenSingleQuote
	tokenDoubleQuote
	tokenPlaceholder
)

// transitions maps (state, token) to the next state. Tokens missing from a
// state's row leave the state unchanged.
var transitions = map[scanState]map[tokenClass]scanState{
	stateOutside: {
		tokenSingleQuote: stateInSingle,
		tokenDoubleQuote: stateInDouble,
	},
	stateInSingle: {
		tokenSingleQuote: stateOutside,
	},
	stateInDouble: {
		tokenDoubleQuote: stateOutside,
	},
}

func classifyByte(sql string, i int) tokenClass {
	switch sql[i] {
	case '\'', '"':
		// A quote preceded by a backslash is data.
		if i > 0 && sql[i-1] == '\\' {
			return tokenOther
		}
		if sql[i] == '\'' {
			return tokenSingleQuote
		}
		return tokenDoubleQuote
	case '?':
		return tokenPlaceholder
	default:
		return tokenOther
	}
}

// RewritePlaceholders replaces every `?` outside string literals with $1, $2, ...
// in order of appearance. It returns the rewritten SQL and the number of
// placeholders found.
func RewritePlaceholders(sql string) (string, int) {
	if strings.IndexByte(sql, '?') < 0 {
		return sql, 0
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)

	state := stateOutside
	n := 0
	for i := 0; i < len(sql); i++ {
		tok := classifyByte(sql, i)
		if tok == tokenPlaceholder && state == stateOutside {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		if next, ok := transitions[state][tok]; ok {
			state = next
		}
		b.WriteByte(sql[i])
	}
	return b.String(), n
}

// CountPlaceholders returns the number of `?` placeholders outside string literals.
func CountPlaceholders(sql string) int {
	_, n := RewritePlaceholders(sql)
	return n
}

// maskLiterals blanks string literals, quotes included, so keyword
// matches only see SQL text. The result has the same length as sql.
func maskLiterals(sql string) string {
	if !strings.ContainsAny(sql, `'"`) {
		return sql
	}

	masked := []byte(sql)
	state := stateOutside
	for i := range masked {
		next := state
		if to, ok := transitions[state][classifyByte(sql, i)]; ok {
			next = to
		}
		if state != stateOutside || next != stateOutside {
			masked[i] = ' '
		}
		state = next
	}
	return string(masked)
}
