package intent

import "github.com/kkarklins/balss/pkg/types"

// lexicon holds the per-language trigger-word sets driving classification.
// All entries are lowercase; multi-word entries are matched on token
// boundaries.
type lexicon struct {
	// remindTriggers dominate every other cue when present.
	remindTriggers []string

	// particles are filler tokens that directly follow a remind trigger and
	// belong to the trigger phrase ("remind ME TO ...").
	particles map[string]bool

	// callVerbs classify as CallContact when a person token co-occurs.
	callVerbs map[string]bool

	// relationNames are known non-capitalized person references in the case
	// form that follows a call verb ("call mom").
	relationNames map[string]bool

	// eventNouns classify as Calendar.
	eventNouns []string

	// locationMarkers classify as Calendar when a time expression co-occurs.
	locationMarkers map[string]bool

	// shoppingTriggers start a shopping-list payload.
	shoppingTriggers []string

	// itemSeparators split a shopping payload besides commas.
	itemSeparators []string

	// noteTriggers classify as an inbox-style Reminder without a due date.
	noteTriggers []string

	// contextPhrases reference something outside the utterance ("the same as
	// usual", "like last time"). Any hit raises the hard-ambiguity flag and
	// forces escalation regardless of confidence.
	contextPhrases []string
}

var lexicons = map[types.Language]*lexicon{
	types.LanguageLatvian: {
		remindTriggers: []string{"atgādini", "atgādiniet", "atgādināsi", "neaizmirsti"},
		particles: map[string]bool{
			"man":   true,
			"mums":  true,
			"lūdzu": true,
		},
		callVerbs: map[string]bool{
			"piezvani":   true,
			"piezvanīt":  true,
			"piezvanīšu": true,
			"zvani":      true,
			"zvanīt":     true,
			"sazvani":    true,
			"sazvanīt":   true,
		},
		relationNames: map[string]bool{
			"mammai":      true,
			"tētim":       true,
			"māsai":       true,
			"brālim":      true,
			"vecmāmiņai":  true,
			"vectēvam":    true,
			"grāmatvedim": true,
			"ārstam":      true,
		},
		eventNouns: []string{"tikšanās", "sapulce", "sapulci", "vizīte", "vizīti"},
		locationMarkers: map[string]bool{
			"pie":        true,
			"birojā":     true,
			"klīnikā":    true,
			"restorānā":  true,
			"skolā":      true,
			"veikalā":    true,
			"frizētavā":  true,
		},
		shoppingTriggers: []string{"nopirkt", "nopērc", "jānopērk", "pievieno sarakstam", "iepirkumu saraksts"},
		itemSeparators:   []string{" un ", " arī "},
		noteTriggers:     []string{"pieraksti", "piezīme", "ideja", "doma"},
		contextPhrases:   []string{"kā parasti", "to pašu", "kā iepriekš", "kā pagājušo reizi", "turpat"},
	},

	types.LanguageEstonian: {
		remindTriggers: []string{"tuleta", "meenuta", "ära unusta"},
		particles: map[string]bool{
			"mulle":  true,
			"meelde": true,
			"palun":  true,
		},
		callVerbs: map[string]bool{
			"helista":   true,
			"helistada": true,
			"helistan":  true,
		},
		relationNames: map[string]bool{
			"emale":      true,
			"isale":      true,
			"õele":       true,
			"vennale":    true,
			"vanaemale":  true,
			"vanaisale":  true,
			"arstile":    true,
			"raamatupidajale": true,
		},
		eventNouns: []string{"kohtumine", "kohtumisele", "koosolek", "koosolekule", "visiit"},
		locationMarkers: map[string]bool{
			"juures":     true,
			"kontoris":   true,
			"koolis":     true,
			"poes":       true,
			"restoranis": true,
			"juuksuris":  true,
		},
		shoppingTriggers: []string{"osta", "ostan", "lisa nimekirja", "ostunimekiri"},
		itemSeparators:   []string{" ja ", " ning "},
		noteTriggers:     []string{"kirjuta üles", "pane kirja", "märge", "idee", "mõte"},
		contextPhrases:   []string{"nagu tavaliselt", "nagu viimati", "sedasama", "samas kohas"},
	},
}
