package recovery

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// rawExercise is whatever a tier managed to pull out of the text, before
// normalization. Empty strings mean "not found".
type rawExercise struct {
	sentence    string
	pinyin      string
	translation string
	answer      string
	options     []string
}

// fieldCount counts the recovered fields out of the five an exercise has.
func (r rawExercise) fieldCount() int {
	n := 0
	for _, s := range []string{r.sentence, r.pinyin, r.translation, r.answer} {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	if len(r.options) > 0 {
		n++
	}
	return n
}

// usable reports whether anything besides the answer was recovered.
func (r rawExercise) usable() bool {
	return r.sentence != "" || r.pinyin != "" || r.translation != "" || len(r.options) > 0
}

// merge fills the fields r lacks from other.
func (r rawExercise) merge(other rawExercise) rawExercise {
	if r.sentence == "" {
		r.sentence = other.sentence
	}
	if r.pinyin == "" {
		r.pinyin = other.pinyin
	}
	if r.translation == "" {
		r.translation = other.translation
	}
	if r.answer == "" {
		r.answer = other.answer
	}
	if len(r.options) == 0 {
		r.options = other.options
	}
	return r
}

// canonicalKey folds key spellings like "sentenceWithGap" and
// "sentence_with_gap" onto one form.
func canonicalKey(k string) string {
	k = strings.ToLower(k)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(k)
}

var keyAliases = map[string]string{
	"sentencewithgap": "sentence",
	"sentence":        "sentence",
	"gapsentence":     "sentence",
	"pinyin":          "pinyin",
	"translation":     "translation",
	"options":         "options",
	"choices":         "options",
	"variants":        "options",
	"answer":          "answer",
	"correctanswer":   "answer",
}

// fromObject maps a decoded JSON object onto rawExercise. When the top level
// has no known keys but wraps a single object, that object is used instead.
func fromObject(obj map[string]any) (rawExercise, bool) {
	var r rawExercise
	known := false
	for k, v := range obj {
		field, ok := keyAliases[canonicalKey(k)]
		if !ok {
			continue
		}
		known = true
		switch field {
		case "sentence":
			r.sentence = scalarString(v)
		case "pinyin":
			r.pinyin = scalarString(v)
		case "translation":
			r.translation = scalarString(v)
		case "answer":
			r.answer = scalarString(v)
		case "options":
			r.options = coerceOptions(v)
		}
	}
	if known {
		return r, true
	}

	var nested map[string]any
	for _, v := range obj {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if nested != nil {
			return rawExercise{}, false
		}
		nested = m
	}
	if nested == nil {
		return rawExercise{}, false
	}
	return fromObject(nested)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

var optionSeparatorRe = regexp.MustCompile(`[,，、;；/|]`)

// coerceOptions accepts an array of scalars or a single delimited string.
func coerceOptions(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitOptions(t)
	default:
		if s := scalarString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func splitOptions(s string) []string {
	var out []string
	for _, part := range optionSeparatorRe.Split(s, -1) {
		if p := cleanOption(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanOption(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'*`+"`")
}

// decodeObject parses span strictly, retrying once after the rewrite chain.
func decodeObject(span string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err == nil && obj != nil {
		return obj, true
	}
	obj = nil
	if err := json.Unmarshal([]byte(Rewrite(span)), &obj); err == nil && obj != nil {
		return obj, true
	}
	return nil, false
}

const quotedValue = `"((?:[^"\\]|\\.)*)"`

func labelPattern(labels ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)"?(?:` + strings.Join(labels, "|") + `)"?\s*[:：]\s*` + quotedValue)
}

var (
	sentenceFieldRe    = labelPattern("sentence_with_gap", "sentenceWithGap", "sentence")
	pinyinFieldRe      = labelPattern("pinyin")
	translationFieldRe = labelPattern("translation")
	answerFieldRe      = labelPattern("correct_answer", "correctAnswer", "answer")
	optionsFieldRe     = regexp.MustCompile(`(?is)"?(?:options|choices)"?\s*[:：]\s*\[(.*?)\]`)
	quotedItemRe       = regexp.MustCompile(quotedValue)
)

// extractFields searches for each field independently by its label.
func extractFields(text string) rawExercise {
	var r rawExercise
	r.sentence = firstGroup(sentenceFieldRe, text)
	r.pinyin = firstGroup(pinyinFieldRe, text)
	r.translation = firstGroup(translationFieldRe, text)
	r.answer = firstGroup(answerFieldRe, text)

	if m := optionsFieldRe.FindStringSubmatch(text); m != nil {
		items := quotedItemRe.FindAllStringSubmatch(m[1], -1)
		if len(items) > 0 {
			for _, it := range items {
				if s := cleanOption(unescape(it[1])); s != "" {
					r.options = append(r.options, s)
				}
			}
		} else {
			r.options = splitOptions(m[1])
		}
	}
	return r
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(unescape(m[1]))
}

// unescape decodes JSON escapes in a captured string body, returning the
// input unchanged when it is not a valid JSON string.
func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
