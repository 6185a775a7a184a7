// Package sig interprets free-text prescription instructions ("SIGs") into
// structured dosing data. The interpreter is a flat decision table: an
// ordered list of pattern rules tried in descending priority, where the
// first rule that both matches and resolves wins. No I/O, no shared state;
// the same text always produces the same ParsedSig.
package sig

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rxtally/dispense-cli/internal/model"
)

// Confidence tiers, assigned by how many fields a rule captured directly
// versus defaulted to a rule-specific constant.
const (
	ConfidenceFull    = 0.95 // dosage, unit, and frequency all captured
	ConfidencePartial = 0.85 // one field defaulted
	ConfidenceWeak    = 0.75 // two or more defaulted, or a loose match
)

// concentrationRe matches inline strength descriptions like "250 mg/5 mL",
// "125mg per 5ml", or "100 units/mL".
var concentrationRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(mg|mcg|g|units?)\s*(?:/|per)\s*(\d+(?:\.\d+)?)?\s*(ml|milliliters?)`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Interpret parses a free-text instruction into a ParsedSig. It fails with
// model.ErrNotParseable when no rule in the table matches; callers should
// respond with example-format guidance in that case.
func Interpret(text string) (model.ParsedSig, error) {
	cleaned := normalizeText(text)
	if cleaned == "" {
		return model.ParsedSig{}, eris.Wrap(model.ErrInvalidArgument, "sig: instruction text is empty")
	}

	for _, r := range ruleTable {
		parsed, ok := applyRule(r, cleaned)
		if !ok {
			continue
		}

		annotate(&parsed, cleaned)

		zap.L().Debug("sig: interpreted instruction",
			zap.String("rule", parsed.MatchedRule),
			zap.Float64("dosage", parsed.DosageAmount),
			zap.Int("frequency_per_day", parsed.FrequencyPerDay),
			zap.String("unit", parsed.Unit),
			zap.Float64("confidence", parsed.Confidence),
		)
		return parsed, nil
	}

	return model.ParsedSig{}, eris.Wrapf(model.ErrNotParseable, "sig: no rule matched %q", text)
}

// applyRule attempts one rule against the cleaned text. A rule matches only
// when its pattern matches and every captured token resolves through the
// unit and frequency tables; otherwise the cascade moves on.
func applyRule(r rule, text string) (model.ParsedSig, bool) {
	m := r.re.FindStringSubmatch(text)
	if m == nil {
		return model.ParsedSig{}, false
	}

	defaulted := 0

	dosage := r.defaultDosage
	if r.dosageGroup > 0 {
		v, ok := parseAmount(m[r.dosageGroup])
		if !ok {
			return model.ParsedSig{}, false
		}
		dosage = v
	} else {
		defaulted++
	}

	unit := r.defaultUnit
	if r.unitGroup > 0 {
		u, ok := ResolveUnit(m[r.unitGroup])
		if !ok {
			return model.ParsedSig{}, false
		}
		unit = u
	} else {
		defaulted++
	}

	freq := r.defaultFreq
	if r.freqGroup > 0 {
		f, ok := ResolveFrequency(m[r.freqGroup])
		if !ok {
			return model.ParsedSig{}, false
		}
		freq = f
	} else if f, ok := trailingFrequency(text); ok && r.loose {
		// Loose rules have no frequency capture; salvage a trailing
		// frequency phrase when one is present.
		freq = f
		defaulted++
	} else {
		defaulted++
	}

	confidence := ConfidenceFull
	switch {
	case r.loose || defaulted >= 2:
		confidence = ConfidenceWeak
	case defaulted == 1:
		confidence = ConfidencePartial
	}

	return model.ParsedSig{
		DosageAmount:    dosage,
		FrequencyPerDay: freq,
		Unit:            unit,
		Confidence:      confidence,
		DosageForm:      formForUnit(unit),
		MatchedRule:     r.name,
	}, true
}

// annotate fills optional fields the instruction text itself can carry:
// a liquid concentration ("250 mg/5 mL") or an insulin strength
// ("100 units/mL").
func annotate(parsed *model.ParsedSig, text string) {
	m := concentrationRe.FindStringSubmatch(text)
	if m == nil {
		return
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || amount <= 0 {
		return
	}
	volume := 1.0
	if m[3] != "" {
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil || v <= 0 {
			return
		}
		volume = v
	}

	doseUnit, _ := ResolveUnit(m[2])
	if doseUnit == "unit" {
		// Units-per-mL is an insulin strength, not a liquid concentration.
		if volume == 1 {
			parsed.InsulinStrength = int(amount)
			parsed.DosageForm = model.DosageFormInsulin
		}
		return
	}

	parsed.Concentration = &model.Concentration{
		AmountPerDose: amount,
		DoseUnit:      doseUnit,
		VolumePerDose: volume,
		VolumeUnit:    "mL",
	}
	parsed.DosageForm = model.DosageFormLiquid
}

// trailingFrequency tries progressively shorter suffixes of the text against
// the frequency tables, so "take 5 mg of codeine twice daily" still yields 2
// under a loose rule.
func trailingFrequency(text string) (int, bool) {
	words := strings.Fields(text)
	const maxPhraseWords = 5
	start := 0
	if len(words) > maxPhraseWords {
		start = len(words) - maxPhraseWords
	}
	for i := start; i < len(words); i++ {
		if f, ok := ResolveFrequency(strings.Join(words[i:], " ")); ok {
			return f, true
		}
	}
	return 0, false
}

// normalizeText collapses whitespace and trims trailing punctuation so the
// anchored rule patterns see a predictable shape.
func normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimRight(text, ". ;")
	return text
}
