package datetime

import (
	"regexp"
	"time"
)

// estonianLexicon covers the Estonian temporal vocabulary. Unlike Latvian,
// relative offsets are postpositional ("kahe tunni pärast"), hour words are
// plain cardinals and count as times only after "kell", and half-hours use a
// separate "pool" token.
var estonianLexicon = &lexicon{
	relativeDays: map[string]int{
		"täna":     0,
		"homme":    1,
		"ülehomme": 2,
	},

	weekdayStems: map[string]time.Weekday{
		"esmaspäev": time.Monday,
		"teisipäev": time.Tuesday,
		"kolmapäev": time.Wednesday,
		"neljapäev": time.Thursday,
		"reede":     time.Friday,
		"laupäev":   time.Saturday,
		"pühapäev":  time.Sunday,
	},

	nextWeekPhrases: []string{
		"järgmisel nädalal",
		"järgmine nädal",
		"tuleval nädalal",
	},

	relOffset: regexp.MustCompile(`(?i)(?:^|\s)((?:([0-9]+|[\pL]+)\s+)?(minut[\pL]*|tunni|tundi|päeva)\s+pärast)\b`),

	// Genitive forms, as they appear before a unit word.
	numberWords: map[string]int{
		"ühe":       1,
		"kahe":      2,
		"kolme":     3,
		"nelja":     4,
		"viie":      5,
		"kuue":      6,
		"seitsme":   7,
		"kaheksa":   8,
		"üheksa":    9,
		"kümne":     10,
		"viieteist": 15,
		"kahekümne": 20,
	},

	monthStems: map[string]time.Month{
		"jaanuar":  time.January,
		"veebruar": time.February,
		"märts":    time.March,
		"aprill":   time.April,
		"mai":      time.May,
		"juun":     time.June,
		"juul":     time.July,
		"august":   time.August,
		"septemb":  time.September,
		"oktoob":   time.October,
		"novemb":   time.November,
		"detsemb":  time.December,
	},

	// Adessive ordinal forms ("on the Nth").
	ordinalDays: map[string]int{
		"esimesel":            1,
		"teisel":              2,
		"kolmandal":           3,
		"neljandal":           4,
		"viiendal":            5,
		"kuuendal":            6,
		"seitsmendal":         7,
		"kaheksandal":         8,
		"üheksandal":          9,
		"kümnendal":           10,
		"üheteistkümnendal":   11,
		"kaheteistkümnendal":  12,
		"kolmeteistkümnendal": 13,
		"neljateistkümnendal": 14,
		"viieteistkümnendal":  15,
		"kahekümnendal":       20,
		"kolmekümnendal":      30,
	},

	ordinalTens: map[string]int{
		"kahekümne":  20,
		"kolmekümne": 30,
	},

	hourWords: map[string]int{
		"üks":       1,
		"kaks":      2,
		"kolm":      3,
		"neli":      4,
		"viis":      5,
		"kuus":      6,
		"seitse":    7,
		"kaheksa":   8,
		"üheksa":    9,
		"kümme":     10,
		"üksteist":  11,
		"kaksteist": 12,
	},
	// Bare cardinals are too common to treat as times on their own
	// ("osta kaks piima"); require "kell" or "pool" context.
	hourNeedsMarker: true,

	halfPrefix: "pool",
	halfFused:  false,

	minuteWords: map[string]int{
		"kümme":       10,
		"viisteist":   15,
		"kakskümmend": 20,
		"kolmkümmend": 30,
		"nelikümmend": 40,
		"viiskümmend": 50,
	},

	clockMarkers: map[string]bool{
		"kell":  true,
		"kella": true,
	},

	markerTime: regexp.MustCompile(`(?i)\bkella?\s+([0-9]{1,2})(?:[:.]([0-9]{2}))?\b`),

	dayParts: []dayPartPhrase{
		{phrase: "hommikul", hour: 9, pm: false},
		{phrase: "päeval", hour: 14, pm: true},
		{phrase: "pärastlõunal", hour: 14, pm: true},
		{phrase: "õhtul", hour: 18, pm: true},
	},
}
