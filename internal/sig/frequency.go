package sig

import (
	"regexp"
	"strconv"
	"strings"
)

// frequencyTable maps literal frequency phrases and abbreviations to integer
// dosing counts per day. 0 is the literal PRN value: the prescriber left the
// frequency unspecified on purpose. Keys are normalized (lowercase, periods
// stripped, single spaces).
var frequencyTable = map[string]int{
	"once daily":        1,
	"once a day":        1,
	"once per day":      1,
	"daily":             1,
	"every day":         1,
	"each day":          1,
	"qd":                1,
	"od":                1,
	"twice daily":       2,
	"twice a day":       2,
	"twice per day":     2,
	"2 times daily":     2,
	"2 times a day":     2,
	"two times daily":   2,
	"two times a day":   2,
	"bid":               2,
	"three times daily": 3,
	"three times a day": 3,
	"3 times daily":     3,
	"3 times a day":     3,
	"thrice daily":      3,
	"tid":               3,
	"four times daily":  4,
	"four times a day":  4,
	"4 times daily":     4,
	"4 times a day":     4,
	"qid":               4,
	"five times daily":  5,
	"5 times daily":     5,

	// Qualitative timing phrases all mean once a day.
	"every morning":   1,
	"each morning":    1,
	"in the morning":  1,
	"every evening":   1,
	"each evening":    1,
	"in the evening":  1,
	"every night":     1,
	"nightly":         1,
	"at night":        1,
	"at bedtime":      1,
	"before bed":      1,
	"before bedtime":  1,
	"qhs":             1,
	"qam":             1,
	"qpm":             1,
	"with breakfast":  1,
	"with dinner":     1,
	"before meals":    3,
	"with meals":      3,
	"after meals":     3,
	"ac":              3,
	"pc":              3,
	"with each meal":  3,
	"before each meal": 3,

	// PRN family: literal 0, substituted with 1 only at calculation time.
	"as needed":            0,
	"as needed for pain":   0,
	"when needed":          0,
	"prn":                  0,
	"prn pain":             0,
	"as directed":          0,
	"use as directed":      0,
	"as instructed":        0,
}

var (
	everyNHoursRe   = regexp.MustCompile(`^(?:every|each|q)\s*(\d+)\s*(?:hours|hour|hrs|hr|h)$`)
	everyNMinutesRe = regexp.MustCompile(`^(?:every|each|q)\s*(\d+)\s*(?:minutes|minute|mins|min|m)$`)
	nTimesDailyRe   = regexp.MustCompile(`^(\d+)\s*(?:times|x)\s*(?:daily|a day|per day|each day)$`)
	prnSuffixRe     = regexp.MustCompile(`\s+(?:as needed|prn|as directed)(?:\s+for\s+\w+)?$`)
)

// ResolveFrequency maps a frequency phrase to dosing events per day.
// Interval phrases divide the day: "every 6 hours" is floor(24/6) = 4,
// "every 30 minutes" is floor(1440/30) = 48. Returns false when the phrase
// is not recognized.
func ResolveFrequency(phrase string) (int, bool) {
	p := normalizePhrase(phrase)
	if p == "" {
		return 0, false
	}

	if n, ok := frequencyTable[p]; ok {
		return n, true
	}

	if m := everyNHoursRe.FindStringSubmatch(p); m != nil {
		h, err := strconv.Atoi(m[1])
		if err != nil || h <= 0 {
			return 0, false
		}
		return 24 / h, true
	}
	if m := everyNMinutesRe.FindStringSubmatch(p); m != nil {
		min, err := strconv.Atoi(m[1])
		if err != nil || min <= 0 {
			return 0, false
		}
		return 1440 / min, true
	}
	if m := nTimesDailyRe.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}

	// "every 6 hours as needed": the PRN qualifier wins, matching the
	// prescriber's intent that dosing is not scheduled.
	if stripped := prnSuffixRe.ReplaceAllString(p, ""); stripped != p {
		if _, ok := ResolveFrequency(stripped); ok {
			return 0, true
		}
	}

	return 0, false
}

var phraseSpaceRe = regexp.MustCompile(`\s+`)

// normalizePhrase lowercases, strips periods (so "b.i.d." matches "bid"),
// drops commas, and collapses whitespace.
func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = phraseSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
