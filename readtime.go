package readability

import (
	"strings"
	"time"
)

const defaultCharsPerMinute = 987

// Average reading speed, in characters per minute, by language.
var charsPerMinute = map[string]int{
	"ar": 612,
	"de": 920,
	"en": 987,
	"es": 1025,
	"fi": 1078,
	"fr": 998,
	"he": 833,
	"it": 950,
	"ja": 357,
	"nl": 978,
	"pl": 916,
	"pt": 913,
	"ru": 986,
	"sl": 885,
	"sv": 917,
	"tr": 1054,
	"zh": 255,
}

// ReadingTime estimates how long it takes to read chars characters of text
// in lang, rounded to the second. Unknown languages read at the English
// speed.
func ReadingTime(chars int, lang string) time.Duration {
	cpm, ok := charsPerMinute[baseLanguage(lang)]
	if !ok {
		cpm = defaultCharsPerMinute
	}
	var d = time.Duration(float64(chars) / float64(cpm) * float64(time.Minute))
	return d.Round(time.Second)
}

// baseLanguage returns the primary subtag of a language tag: "en" for "en-US".
func baseLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
