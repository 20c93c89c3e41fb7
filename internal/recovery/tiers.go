package recovery

import (
	"regexp"
	"strings"
)

// Tier names the recovery strategy that produced a candidate.
type Tier string

// Recovery tiers, in the order they are attempted.
const (
	TierFenced            Tier = "fenced"
	TierUnterminatedFence Tier = "unterminated_fence"
	TierBalanced          Tier = "balanced"
	TierNaiveSpan         Tier = "naive_span"
	TierFields            Tier = "fields"
	TierText              Tier = "text"
	TierSynthesized       Tier = "synthesized"
)

// TierOutcome is either Found, carrying the recovered fields, or NotFound.
type TierOutcome struct {
	found  bool
	fields rawExercise
	object map[string]any
}

// Found wraps recovered fields.
func Found(r rawExercise) TierOutcome {
	return TierOutcome{found: true, fields: r}
}

// NotFound signals that the tier recovered nothing.
func NotFound() TierOutcome {
	return TierOutcome{}
}

// IsFound reports whether the tier produced fields.
func (o TierOutcome) IsFound() bool {
	return o.found
}

type tierFunc func(text, word string) TierOutcome

type tier struct {
	name Tier
	run  tierFunc
}

// tiers is the ordered fallback chain. The last entry never returns NotFound.
var tiers = []tier{
	{TierFenced, jsonTier(fencedSpan)},
	{TierUnterminatedFence, jsonTier(unterminatedFenceSpan)},
	{TierBalanced, jsonTier(longestBalancedSpan)},
	{TierNaiveSpan, jsonTier(naiveSpan)},
	{TierFields, fieldsTier},
	{TierText, textTier},
	{TierSynthesized, synthesizeTier},
}

// jsonTier turns a span extractor into a tier: the span must decode to an
// object holding at least one exercise field.
func jsonTier(extract func(string) (string, bool)) tierFunc {
	return func(text, _ string) TierOutcome {
		span, ok := extract(text)
		if !ok {
			return NotFound()
		}
		obj, ok := decodeObject(span)
		if !ok {
			return NotFound()
		}
		r, ok := fromObject(obj)
		if !ok {
			return NotFound()
		}
		out := Found(r)
		out.object = obj
		return out
	}
}

var fencedBlockRe = regexp.MustCompile("(?s)```[A-Za-z]*\\s*(\\{.*?\\})\\s*```")

const fence = "```"

// fencedSpan returns the object inside the first closed fenced block.
func fencedSpan(text string) (string, bool) {
	m := fencedBlockRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// unterminatedFenceSpan handles a fence that opens and never closes.
func unterminatedFenceSpan(text string) (string, bool) {
	idx := strings.Index(text, fence)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(fence):]
	if strings.Contains(rest, fence) {
		return "", false
	}
	return braceSpan(rest)
}

// longestBalancedSpan collects every top-level balanced {...} span and
// returns the longest. Braces inside JSON strings are ignored.
func longestBalancedSpan(text string) (string, bool) {
	var best string
	depth, start := 0, -1
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && i+1-start > len(best) {
				best = text[start : i+1]
			}
		}
	}
	return best, best != ""
}

// naiveSpan is everything from the first { to the last }.
func naiveSpan(text string) (string, bool) {
	return braceSpan(text)
}

func braceSpan(text string) (string, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// minFieldsForRegexTier is the number of fields the label search must find
// before the text heuristics are skipped.
const minFieldsForRegexTier = 3

func fieldsTier(text, _ string) TierOutcome {
	r := extractFields(NormalizeQuotes(text))
	if r.fieldCount() < minFieldsForRegexTier {
		return NotFound()
	}
	return Found(r)
}

// textTier scans line by line and keeps whatever the label search found.
func textTier(text, word string) TierOutcome {
	normalized := NormalizeQuotes(text)
	r := extractFields(normalized).merge(scanLines(normalized, word))
	if !r.usable() {
		return NotFound()
	}
	return Found(r)
}

func synthesizeTier(_, _ string) TierOutcome {
	return Found(rawExercise{})
}
