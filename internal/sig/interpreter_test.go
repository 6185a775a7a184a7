package sig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtally/dispense-cli/internal/model"
)

func TestInterpret_StandardInstruction(t *testing.T) {
	parsed, err := Interpret("Take 1 tablet twice daily")
	require.NoError(t, err)

	assert.Equal(t, 1.0, parsed.DosageAmount)
	assert.Equal(t, 2, parsed.FrequencyPerDay)
	assert.Equal(t, "tablet", parsed.Unit)
	assert.Equal(t, ConfidenceFull, parsed.Confidence)
	assert.Equal(t, model.DosageFormTablet, parsed.DosageForm)
}

func TestInterpret_AbbreviatedFrequency(t *testing.T) {
	parsed, err := Interpret("Take 2 tabs b.i.d.")
	require.NoError(t, err)

	assert.Equal(t, 2.0, parsed.DosageAmount)
	assert.Equal(t, 2, parsed.FrequencyPerDay)
	assert.Equal(t, "tablet", parsed.Unit)
	assert.Equal(t, ConfidenceFull, parsed.Confidence)
}

func TestInterpret_WordAmounts(t *testing.T) {
	parsed, err := Interpret("Take one capsule three times daily")
	require.NoError(t, err)
	assert.Equal(t, 1.0, parsed.DosageAmount)
	assert.Equal(t, 3, parsed.FrequencyPerDay)
	assert.Equal(t, "capsule", parsed.Unit)

	parsed, err = Interpret("Take two tablets every morning")
	require.NoError(t, err)
	assert.Equal(t, 2.0, parsed.DosageAmount)
	assert.Equal(t, 1, parsed.FrequencyPerDay)
}

func TestInterpret_FractionalDose(t *testing.T) {
	parsed, err := Interpret("Take 1/2 tablet daily")
	require.NoError(t, err)
	assert.Equal(t, 0.5, parsed.DosageAmount)
	assert.Equal(t, 1, parsed.FrequencyPerDay)

	parsed, err = Interpret("Take 1.5 tablets at bedtime")
	require.NoError(t, err)
	assert.Equal(t, 1.5, parsed.DosageAmount)
	assert.Equal(t, 1, parsed.FrequencyPerDay)
}

func TestInterpret_PRN(t *testing.T) {
	parsed, err := Interpret("Take 1 tablet as needed")
	require.NoError(t, err)

	// PRN keeps the literal 0; substitution happens at calculation time.
	assert.Equal(t, 0, parsed.FrequencyPerDay)
	assert.True(t, parsed.AsNeeded())
	assert.Equal(t, ConfidenceFull, parsed.Confidence)
}

func TestInterpret_IntervalPhrase(t *testing.T) {
	parsed, err := Interpret("Take 2 tablets every 6 hours")
	require.NoError(t, err)
	assert.Equal(t, 2.0, parsed.DosageAmount)
	assert.Equal(t, 4, parsed.FrequencyPerDay)
}

func TestInterpret_NoVerb(t *testing.T) {
	parsed, err := Interpret("1 tablet twice daily")
	require.NoError(t, err)
	assert.Equal(t, 1.0, parsed.DosageAmount)
	assert.Equal(t, 2, parsed.FrequencyPerDay)
	assert.Equal(t, "tablet", parsed.Unit)
	assert.Equal(t, ConfidenceFull, parsed.Confidence)
}

func TestInterpret_DefaultedUnit(t *testing.T) {
	// No unit token: the rule defaults to tablet, one tier down.
	parsed, err := Interpret("Take 1 twice daily")
	require.NoError(t, err)
	assert.Equal(t, 1.0, parsed.DosageAmount)
	assert.Equal(t, 2, parsed.FrequencyPerDay)
	assert.Equal(t, "tablet", parsed.Unit)
	assert.Equal(t, ConfidencePartial, parsed.Confidence)
}

func TestInterpret_DefaultedFrequency(t *testing.T) {
	// No frequency phrase: defaults to once daily, one tier down.
	parsed, err := Interpret("Take 2 tablets")
	require.NoError(t, err)
	assert.Equal(t, 2.0, parsed.DosageAmount)
	assert.Equal(t, 1, parsed.FrequencyPerDay)
	assert.Equal(t, ConfidencePartial, parsed.Confidence)
}

func TestInterpret_LooseMatch(t *testing.T) {
	// Unparseable filler around a recognizable dose: loose rule, weak tier.
	parsed, err := Interpret("please have the patient take 5 mg with food twice daily")
	require.NoError(t, err)
	assert.Equal(t, 5.0, parsed.DosageAmount)
	assert.Equal(t, "mg", parsed.Unit)
	assert.Equal(t, 2, parsed.FrequencyPerDay)
	assert.Equal(t, ConfidenceWeak, parsed.Confidence)
}

func TestInterpret_LiquidWithConcentration(t *testing.T) {
	parsed, err := Interpret("Take 5 mL (250 mg/5 mL) twice daily")
	require.NoError(t, err)

	assert.Equal(t, 5.0, parsed.DosageAmount)
	assert.Equal(t, "mL", parsed.Unit)
	assert.Equal(t, model.DosageFormLiquid, parsed.DosageForm)
	require.NotNil(t, parsed.Concentration)
	assert.Equal(t, 250.0, parsed.Concentration.AmountPerDose)
	assert.Equal(t, 5.0, parsed.Concentration.VolumePerDose)
	assert.Equal(t, "mL", parsed.Concentration.VolumeUnit)
}

func TestInterpret_Inhaler(t *testing.T) {
	parsed, err := Interpret("Inhale 2 puffs every 4 hours")
	require.NoError(t, err)

	assert.Equal(t, 2.0, parsed.DosageAmount)
	assert.Equal(t, "actuation", parsed.Unit)
	assert.Equal(t, 6, parsed.FrequencyPerDay)
	assert.Equal(t, model.DosageFormInhaler, parsed.DosageForm)
}

func TestInterpret_Insulin(t *testing.T) {
	parsed, err := Interpret("Inject 10 units twice daily")
	require.NoError(t, err)

	assert.Equal(t, 10.0, parsed.DosageAmount)
	assert.Equal(t, "unit", parsed.Unit)
	assert.Equal(t, model.DosageFormInsulin, parsed.DosageForm)
}

func TestInterpret_NotParseable(t *testing.T) {
	for _, text := range []string{
		"apply liberally to the affected area",
		"see attached instructions",
		"xyzzy",
	} {
		_, err := Interpret(text)
		require.Error(t, err, "text %q", text)
		assert.True(t, errors.Is(err, model.ErrNotParseable), "text %q should be NotParseable, got %v", text, err)
	}
}

func TestInterpret_EmptyText(t *testing.T) {
	_, err := Interpret("   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestInterpret_Deterministic(t *testing.T) {
	first, err := Interpret("Take 1 tablet twice daily")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Interpret("Take 1 tablet twice daily")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRuleTable_PriorityOrder(t *testing.T) {
	// The table must be strictly descending by priority with declaration
	// order preserved on ties.
	for i := 1; i < len(ruleTable); i++ {
		assert.GreaterOrEqual(t, ruleTable[i-1].priority, ruleTable[i].priority,
			"rule %q before %q", ruleTable[i-1].name, ruleTable[i].name)
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1":     1,
		"2.5":   2.5,
		"1/2":   0.5,
		"1 1/2": 1.5,
		"one":   1,
		"half":  0.5,
		"a":     1,
	}
	for token, want := range cases {
		got, ok := parseAmount(token)
		assert.True(t, ok, "token %q", token)
		assert.Equal(t, want, got, "token %q", token)
	}

	for _, token := range []string{"", "0", "-1", "x", "1/0"} {
		_, ok := parseAmount(token)
		assert.False(t, ok, "token %q should not parse", token)
	}
}
