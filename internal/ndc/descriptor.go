// Package ndc parses catalog package descriptors and selects package
// combinations that cover a required quantity with minimal waste.
package ndc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/rxtally/dispense-cli/internal/model"
)

// descriptorPattern is one entry in the ordered descriptor cascade. parse
// turns the submatches into a package size; patterns are tried in order and
// the first that matches and yields a positive size wins.
type descriptorPattern struct {
	name  string
	re    *regexp.Regexp
	parse func(m []string) (float64, bool)
}

// descriptorPatterns covers the common openFDA/NDC Directory phrasings:
// "30 TABLET in 1 BOTTLE", "100mL in 1 BOTTLE", "3 BLISTER PACK in 1 CARTON
// / 10 TABLET in 1 BLISTER PACK", "2 x 10 mL in 1 CARTON".
var descriptorPatterns = []descriptorPattern{
	{
		name: "multi-level",
		// Outer count times inner count: "3 BLISTER PACK in 1 CARTON (...) / 10 TABLET in 1 BLISTER PACK".
		re: regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s+[A-Za-z ,()-]+in\s+1\s+[A-Za-z ]+.*/\s*(\d+(?:\.\d+)?)\s*[A-Za-z]`),
		parse: func(m []string) (float64, bool) {
			outer, err1 := strconv.ParseFloat(m[1], 64)
			inner, err2 := strconv.ParseFloat(m[2], 64)
			if err1 != nil || err2 != nil {
				return 0, false
			}
			return outer * inner, true
		},
	},
	{
		name: "count-times-size",
		re:   regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)\s*[A-Za-z]`),
		parse: func(m []string) (float64, bool) {
			a, err1 := strconv.ParseFloat(m[1], 64)
			b, err2 := strconv.ParseFloat(m[2], 64)
			if err1 != nil || err2 != nil {
				return 0, false
			}
			return a * b, true
		},
	},
	{
		name: "size-in-container",
		re:   regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*[A-Za-z ,()-]*\bin\b`),
		parse: func(m []string) (float64, bool) {
			v, err := strconv.ParseFloat(m[1], 64)
			return v, err == nil
		},
	},
	{
		name: "size-with-unit",
		re:   regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:tablet|capsule|pill|caplet|ml|milliliter|gram|actuation|puff|unit|patch|suppositor|spray|dose)`),
		parse: func(m []string) (float64, bool) {
			v, err := strconv.ParseFloat(m[1], 64)
			return v, err == nil
		},
	},
	{
		name: "leading-number",
		re:   regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\b`),
		parse: func(m []string) (float64, bool) {
			v, err := strconv.ParseFloat(m[1], 64)
			return v, err == nil
		},
	},
}

// ParsePackageSize extracts a positive numeric package size from a free-text
// catalog descriptor. Failure wraps model.ErrDescriptorUnparseable and is
// non-fatal by contract: callers skip the entry, count the skip, and keep
// going rather than abort the batch over one bad descriptor.
func ParsePackageSize(descriptor string) (float64, error) {
	text := strings.TrimSpace(descriptor)
	if text == "" {
		return 0, eris.Wrap(model.ErrDescriptorUnparseable, "ndc: empty descriptor")
	}

	for _, p := range descriptorPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		size, ok := p.parse(m)
		if !ok || size <= 0 {
			continue
		}
		return size, nil
	}

	return 0, eris.Wrapf(model.ErrDescriptorUnparseable, "ndc: no pattern matched %q", descriptor)
}
