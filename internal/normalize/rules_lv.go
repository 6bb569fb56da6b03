package normalize

import "regexp"

// latvianRules fixes mishearings that show up repeatedly in Latvian Whisper
// output. Order matters: the diacritic restorations run first so the
// word-merge and suffix rules below can match the restored forms.
var latvianRules = []Rule{
	// Dropped diacritics on high-frequency temporal keywords.
	{Pattern: regexp.MustCompile(`(?i)\bsodien\b`), ReplaceFunc: func(g []string) string {
		return matchCase("šodien", g[0])
	}},
	{Pattern: regexp.MustCompile(`(?i)\bparit\b`), ReplaceFunc: func(g []string) string {
		return matchCase("parīt", g[0])
	}},
	{Pattern: regexp.MustCompile(`(?i)\bpec\b`), ReplaceFunc: func(g []string) string {
		return matchCase("pēc", g[0])
	}},
	// No trailing boundary: also repairs the fused "atgadiniman" form, which
	// the merge rule below then splits.
	{Pattern: regexp.MustCompile(`(?i)\batgadini`), ReplaceFunc: func(g []string) string {
		return matchCase("atgādini", g[0])
	}},

	// The trigger phrase fused into one token.
	{Pattern: regexp.MustCompile(`(?i)\b(atgādini)(man)\b`), Replace: "$1 $2"},

	// Relative-day keyword fused with a following clock phrase
	// ("rītpulksten deviņos" -> "rīt pulksten deviņos").
	// (^|\s) instead of \b: the regexp word boundary is ASCII-only and does
	// not fire before "š".
	{Pattern: regexp.MustCompile(`(?i)(^|\s)(šodien|rīt|parīt)(pulksten)\b`), Replace: "$1$2 $3"},

	// "pulkstens"/"pulkstenis" for the adverbial "pulksten".
	{Pattern: regexp.MustCompile(`(?i)\bpulksten(?:s|is)\b`), ReplaceFunc: func(g []string) string {
		return matchCase("pulksten", g[0])
	}},

	// Half-hour constructions split into two tokens ("pus deviņos" ->
	// "pusdeviņos").
	{Pattern: regexp.MustCompile(`(?i)\bpus (vienos|divos|trijos|četros|piecos|sešos|septiņos|astoņos|deviņos|desmitos|vienpadsmitos|divpadsmitos)\b`), ReplaceFunc: func(g []string) string {
		return matchCase("pus"+lowerFirst(g[1]), g[0])
	}},

	// Mis-inflected event noun ("tikšanas"/"tikšana" for "tikšanās").
	{Pattern: regexp.MustCompile(`(?i)\btikšan(?:as|a)\b`), ReplaceFunc: func(g []string) string {
		return matchCase("tikšanās", g[0])
	}},
}

func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = toLower(r[0])
	return string(r)
}
