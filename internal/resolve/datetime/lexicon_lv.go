package datetime

import (
	"regexp"
	"time"
)

// latvianLexicon covers the Latvian temporal vocabulary: relative days,
// weekday and month stems (nominative and locative forms share a stem),
// locative hour words, "pus" half-hours, and the "pēc N <unit>" offset form.
var latvianLexicon = &lexicon{
	relativeDays: map[string]int{
		"šodien": 0,
		"rīt":    1,
		"rītu":   1,
		"parīt":  2,
	},

	weekdayStems: map[string]time.Weekday{
		"pirmdien":   time.Monday,
		"otrdien":    time.Tuesday,
		"trešdien":   time.Wednesday,
		"ceturtdien": time.Thursday,
		"piektdien":  time.Friday,
		"sestdien":   time.Saturday,
		"svētdien":   time.Sunday,
	},

	nextWeekPhrases: []string{
		"nākamnedēļ",
		"nākošnedēļ",
		"nākamajā nedēļā",
		"nākamā nedēļā",
	},

	relOffset: regexp.MustCompile(`(?i)(?:^|\s)(pēc\s+(?:([0-9]+|[\pL]+)\s+)?(minū[\pL]*|stund[\pL]*|dien[\pL]*))`),

	numberWords: map[string]int{
		"vien":         1,
		"div":          2,
		"trij":         3,
		"trīs":         3,
		"četr":         4,
		"piec":         5,
		"seš":          6,
		"septiņ":       7,
		"astoņ":        8,
		"deviņ":        9,
		"desmit":       10,
		"piecpadsmit":  15,
		"divdesmit":    20,
		"trīsdesmit":   30,
		"četrdesmit":   40,
		"piecdesmit":   50,
	},

	monthStems: map[string]time.Month{
		"janvār":   time.January,
		"februār":  time.February,
		"mart":     time.March,
		"aprīl":    time.April,
		"maij":     time.May,
		"jūnij":    time.June,
		"jūlij":    time.July,
		"august":   time.August,
		"septembr": time.September,
		"oktobr":   time.October,
		"novembr":  time.November,
		"decembr":  time.December,
	},

	// Locative ordinal forms ("on the Nth").
	ordinalDays: map[string]int{
		"pirmajā":          1,
		"otrajā":           2,
		"trešajā":          3,
		"ceturtajā":        4,
		"piektajā":         5,
		"sestajā":          6,
		"septītajā":        7,
		"astotajā":         8,
		"devītajā":         9,
		"desmitajā":        10,
		"vienpadsmitajā":   11,
		"divpadsmitajā":    12,
		"trīspadsmitajā":   13,
		"četrpadsmitajā":   14,
		"piecpadsmitajā":   15,
		"sešpadsmitajā":    16,
		"septiņpadsmitajā": 17,
		"astoņpadsmitajā":  18,
		"deviņpadsmitajā":  19,
		"divdesmitajā":     20,
		"trīsdesmitajā":    30,
	},

	ordinalTens: map[string]int{
		"divdesmit":  20,
		"trīsdesmit": 30,
	},

	// Locative plural hour words ("at two" = "divos").
	hourWords: map[string]int{
		"vienos":         1,
		"divos":          2,
		"trijos":         3,
		"četros":         4,
		"piecos":         5,
		"sešos":          6,
		"septiņos":       7,
		"astoņos":        8,
		"deviņos":        9,
		"desmitos":       10,
		"vienpadsmitos":  11,
		"divpadsmitos":   12,
	},
	hourNeedsMarker: false,

	// "pusdeviņos" fuses into one token and means half past eight.
	halfPrefix: "pus",
	halfFused:  true,

	minuteWords: map[string]int{
		"desmit":      10,
		"piecpadsmit": 15,
		"divdesmit":   20,
		"trīsdesmit":  30,
		"četrdesmit":  40,
		"piecdesmit":  50,
	},

	clockMarkers: map[string]bool{
		"pulksten": true,
		"plkst":    true,
	},

	markerTime: regexp.MustCompile(`(?i)\b(?:pulksten|plkst\.?)\s+([0-9]{1,2})(?::([0-9]{2}))?\b`),

	dayParts: []dayPartPhrase{
		{phrase: "no rīta", hour: 9, pm: false},
		{phrase: "pēcpusdienā", hour: 14, pm: true},
		{phrase: "dienas vidū", hour: 14, pm: true},
		{phrase: "vakarā", hour: 18, pm: true},
	},
}
