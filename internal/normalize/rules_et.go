package normalize

import "regexp"

// estonianRules fixes recurring Estonian mishearings. As with the Latvian
// list, diacritic restorations come first so later merge rules see the
// canonical spellings.
var estonianRules = []Rule{
	// Dropped diacritics on temporal keywords.
	{Pattern: regexp.MustCompile(`(?i)\btana\b`), ReplaceFunc: func(g []string) string {
		return matchCase("täna", g[0])
	}},
	{Pattern: regexp.MustCompile(`(?i)\bohtul\b`), ReplaceFunc: func(g []string) string {
		return matchCase("õhtul", g[0])
	}},
	{Pattern: regexp.MustCompile(`(?i)\bparast\b`), ReplaceFunc: func(g []string) string {
		return matchCase("pärast", g[0])
	}},
	{Pattern: regexp.MustCompile(`(?i)\bule\b`), ReplaceFunc: func(g []string) string {
		return matchCase("üle", g[0])
	}},

	// "üle homme" split by the recognizer; the canonical form is one word.
	// Depends on the "ule" -> "üle" fix above.
	// (^|\s) instead of \b: the regexp word boundary is ASCII-only and does
	// not fire before "ü".
	{Pattern: regexp.MustCompile(`(?i)(^|\s)(üle) homme\b`), ReplaceFunc: func(g []string) string {
		return g[1] + matchCase("ülehomme", g[2])
	}},

	// The reminder trigger fused into one token.
	{Pattern: regexp.MustCompile(`(?i)\b(tuleta)(mulle|meelde)\b`), Replace: "$1 $2"},

	// "kella" heard for the adverbial "kell" before an hour word.
	{Pattern: regexp.MustCompile(`(?i)\bkella (üks|kaks|kolm|neli|viis|kuus|seitse|kaheksa|üheksa|kümme|üksteist|kaksteist)\b`), Replace: "kell $1"},

	// Half-hour constructions split into two tokens ("pool üheksa" stays two
	// words in Estonian, but "poolüheksa" fused output must be split).
	{Pattern: regexp.MustCompile(`(?i)\bpool(üks|kaks|kolm|neli|viis|kuus|seitse|kaheksa|üheksa|kümme|üksteist|kaksteist)\b`), Replace: "pool $1"},
}
