package sig

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// rule is one entry in the interpreter's decision table. Rules are plain
// data: a pattern, a priority, and the capture-group index for each field
// (0 when the pattern cannot capture that field, in which case the rule's
// default applies and confidence drops one tier per defaulted field).
type rule struct {
	name     string
	priority int
	re       *regexp.Regexp

	dosageGroup int
	unitGroup   int
	freqGroup   int

	defaultDosage float64
	defaultUnit   string
	defaultFreq   int

	// loose marks catch-all rules whose matches are inherently weak.
	loose bool
}

const (
	verbAlt   = `(?:take|takes|use|give|inhale|inject|instill|apply|chew|swallow|administer|place)`
	amountAlt = `(\d+(?:\.\d+)?(?:\s*/\s*\d+)?|\d+\s+\d+/\d+|one|two|three|four|five|six|seven|eight|nine|ten|half|a half|one half|a)`
	unitTok   = `([a-zA-Z.]+)`
)

// ruleTable is the immutable, priority-ordered decision table. Evaluation is
// strictly descending priority with declaration order breaking ties; the
// first rule whose pattern matches and whose captured tokens resolve wins.
// Built once at package init, never mutated.
var ruleTable = buildRules()

func buildRules() []rule {
	rules := []rule{
		{
			name:     "verb-dose-unit-freq",
			priority: 100,
			re: regexp.MustCompile(`(?i)^` + verbAlt + `\s+` + amountAlt + `\s*(?:x\s*)?` + unitTok + `\s+(?:by\s+(?:mouth|inhalation|injection)\s+|orally\s+|subcutaneously\s+|under\s+the\s+tongue\s+)?(.+)$`),
			dosageGroup: 1, unitGroup: 2, freqGroup: 3,
		},
		{
			name:     "dose-unit-freq",
			priority: 90,
			re: regexp.MustCompile(`(?i)^` + amountAlt + `\s*(?:x\s*)?` + unitTok + `\s+(?:by\s+(?:mouth|inhalation|injection)\s+|orally\s+)?(.+)$`),
			dosageGroup: 1, unitGroup: 2, freqGroup: 3,
		},
		{
			name:     "verb-dose-freq",
			priority: 80,
			re: regexp.MustCompile(`(?i)^` + verbAlt + `\s+` + amountAlt + `\s+(.+)$`),
			dosageGroup: 1, freqGroup: 2,
			defaultUnit: "tablet",
		},
		{
			name:     "verb-dose-unit",
			priority: 70,
			re: regexp.MustCompile(`(?i)^` + verbAlt + `\s+` + amountAlt + `\s*(?:x\s*)?` + unitTok + `\.?$`),
			dosageGroup: 1, unitGroup: 2,
			defaultFreq: 1,
		},
		{
			name:     "dose-unit",
			priority: 60,
			re: regexp.MustCompile(`(?i)^` + amountAlt + `\s*(?:x\s*)?` + unitTok + `\.?$`),
			dosageGroup: 1, unitGroup: 2,
			defaultFreq: 1,
		},
		{
			name:     "freq-only",
			priority: 50,
			re:       regexp.MustCompile(`(?i)^` + verbAlt + `\s+(.+)$`),
			freqGroup: 1,
			defaultDosage: 1, defaultUnit: "tablet",
			loose: true,
		},
		{
			name:     "loose-dose-anywhere",
			priority: 10,
			re: regexp.MustCompile(`(?i)\b` + amountAlt + `\s*(?:x\s*)?` + unitTok + `\b`),
			dosageGroup: 1, unitGroup: 2,
			defaultFreq: 1,
			loose:       true,
		},
	}

	// Descending priority, declaration order on ties.
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority > rules[j].priority
	})
	return rules
}

// wordAmounts maps spelled-out dosage amounts to numbers.
var wordAmounts = map[string]float64{
	"a":        1,
	"one":      1,
	"two":      2,
	"three":    3,
	"four":     4,
	"five":     5,
	"six":      6,
	"seven":    7,
	"eight":    8,
	"nine":     9,
	"ten":      10,
	"half":     0.5,
	"a half":   0.5,
	"one half": 0.5,
}

// parseAmount converts a captured dosage token to a number. Accepts plain
// decimals, simple fractions ("1/2"), mixed numbers ("1 1/2"), and the
// spelled-out forms in wordAmounts.
func parseAmount(token string) (float64, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0, false
	}

	if v, ok := wordAmounts[token]; ok {
		return v, true
	}

	// Mixed number: "1 1/2".
	if parts := strings.Fields(token); len(parts) == 2 && strings.Contains(parts[1], "/") {
		whole, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		frac, ok := parseFraction(parts[1])
		if !ok {
			return 0, false
		}
		return whole + frac, true
	}

	if strings.Contains(token, "/") {
		return parseFraction(token)
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseFraction(token string) (float64, bool) {
	parts := strings.SplitN(token, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	v := num / den
	if v <= 0 {
		return 0, false
	}
	return v, true
}
