package dialect

import (
	"regexp"
	"strings"
)

// FunctionRewrite maps one MySQL function form to its Postgres equivalent.
// Replacement uses regexp expansion syntax (${1} for the first group).
type FunctionRewrite struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply rewrites every match of the rule in sql.
func (r FunctionRewrite) Apply(sql string) string {
	return r.Pattern.ReplaceAllString(sql, r.Replacement)
}

// DefaultRewrites returns the function rewrites used by the platform's
// queries, in the order they must be applied. CURDATE() has to be rewritten
// after the DATE_SUB forms that embed it and before DATEDIFF, which matches
// on CURRENT_DATE.
func DefaultRewrites() []FunctionRewrite {
	return []FunctionRewrite{
		{
			Name:        "DATE_SUB",
			Pattern:     regexp.MustCompile(`(?i)\bDATE_SUB\s*\(\s*CURDATE\(\)\s*,\s*INTERVAL\s+(\d+)\s+DAY\s*\)`),
			Replacement: "CURRENT_DATE - INTERVAL '${1} day'",
		},
		{
			Name:        "DATE_SUB",
			Pattern:     regexp.MustCompile(`(?i)\bDATE_SUB\s*\(\s*CURDATE\(\)\s*,\s*INTERVAL\s+(\d+)\s+MONTH\s*\)`),
			Replacement: "CURRENT_DATE - INTERVAL '${1} month'",
		},
		{
			Name:        "CURDATE",
			Pattern:     regexp.MustCompile(`(?i)\bCURDATE\(\)`),
			Replacement: "CURRENT_DATE",
		},
		{
			Name:        "YEAR",
			Pattern:     regexp.MustCompile(`(?i)\bYEAR\s*\(\s*([^)]+?)\s*\)`),
			Replacement: "EXTRACT(YEAR FROM ${1})",
		},
		{
			Name:        "MONTH",
			Pattern:     regexp.MustCompile(`(?i)\bMONTH\s*\(\s*([^)]+?)\s*\)`),
			Replacement: "EXTRACT(MONTH FROM ${1})",
		},
		{
			Name:        "DATEDIFF",
			Pattern:     regexp.MustCompile(`(?i)\bDATEDIFF\s*\(\s*([^,]+?)\s*,\s*CURRENT_DATE\s*\)`),
			Replacement: "(${1}::date - CURRENT_DATE)",
		},
	}
}

// mysqlOnlyFunctions are functions used by MySQL-era queries that have no
// rewrite. They reach Postgres verbatim and fail there.
var mysqlOnlyFunctions = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"DATE_FORMAT", regexp.MustCompile(`(?i)\bDATE_FORMAT\s*\(`)},
	{"IFNULL", regexp.MustCompile(`(?i)\bIFNULL\s*\(`)},
	{"GROUP_CONCAT", regexp.MustCompile(`(?i)\bGROUP_CONCAT\s*\(`)},
	{"DATE_ADD", regexp.MustCompile(`(?i)\bDATE_ADD\s*\(`)},
}

// Statement is a template prepared for one engine.
type Statement struct {
	SQL  string
	Kind StatementKind
	// Returning is set when the statement produces rows and must be run as a query.
	Returning bool
	// Params is the number of positional parameters in SQL.
	Params int
}

// Translator rewrites MySQL-dialect templates for Postgres. A Translator is
// immutable and safe for concurrent use.
type Translator struct {
	rules      []FunctionRewrite
	primaryKey string
}

// NewTranslator builds a translator from an ordered rewrite table.
func NewTranslator(rules ...FunctionRewrite) *Translator {
	copied := make([]FunctionRewrite, len(rules))
	copy(copied, rules)
	return &Translator{rules: copied, primaryKey: "id"}
}

// DefaultTranslator returns a translator with DefaultRewrites.
func DefaultTranslator() *Translator {
	return NewTranslator(DefaultRewrites()...)
}

// WithPrimaryKey returns a copy of the translator that names pk in the
// RETURNING clause it adds to inserts.
func (t *Translator) WithPrimaryKey(pk string) *Translator {
	if pk == "" {
		return t
	}
	return &Translator{rules: t.rules, primaryKey: pk}
}

// PrimaryKey returns the column requested from inserts.
func (t *Translator) PrimaryKey() string {
	return t.primaryKey
}

// Rules returns a copy of the rewrite table.
func (t *Translator) Rules() []FunctionRewrite {
	out := make([]FunctionRewrite, len(t.rules))
	copy(out, t.rules)
	return out
}

// RewriteFunctions applies every rewrite rule to sql, in table order.
func (t *Translator) RewriteFunctions(sql string) string {
	for _, rule := range t.rules {
		sql = rule.Apply(sql)
	}
	return sql
}

// Translate prepares sql for engine. MySQL templates are returned unchanged.
func (t *Translator) Translate(engine Engine, sql string) Statement {
	if !engine.Translated() {
		kind := Classify(sql)
		return Statement{
			SQL:       sql,
			Kind:      kind,
			Returning: leadsWithRows(sql),
			Params:    CountPlaceholders(sql),
		}
	}

	rewritten, n := RewritePlaceholders(t.RewriteFunctions(sql))
	kind := Classify(rewritten)
	if kind == KindInsert {
		rewritten = EnsureReturning(rewritten, t.primaryKey)
	}

	return Statement{
		SQL:       rewritten,
		Kind:      kind,
		Returning: kind == KindInsert || ProducesRows(rewritten),
		Params:    n,
	}
}

// Unsupported lists MySQL-only functions found in sql that no rule rewrites.
func (t *Translator) Unsupported(sql string) []string {
	var found []string
	for _, fn := range mysqlOnlyFunctions {
		if t.hasRule(fn.name) {
			continue
		}
		if fn.pattern.MatchString(sql) {
			found = append(found, fn.name)
		}
	}
	return found
}

func (t *Translator) hasRule(name string) bool {
	for _, rule := range t.rules {
		if strings.EqualFold(rule.Name, name) {
			return true
		}
	}
	return false
}
