package recovery

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// maxOptionRunes is the longest bulleted line still treated as an option.
const maxOptionRunes = 12

// maxLabelRunes bounds what counts as a "label:" prefix.
const maxLabelRunes = 24

var (
	bulletRe = regexp.MustCompile(`^(?:[-*•·]|\d{1,2}[.)、]|[A-Da-d][.)、])\s*`)
	gapRunRe = regexp.MustCompile(`[_＿]{2,}`)
)

type lineLabel int

const (
	labelNone lineLabel = iota
	labelSentence
	labelPinyin
	labelTranslation
	labelAnswer
	labelOptions
)

// labelKeywords are matched against the lower-cased text before the first
// colon. The lists cover English, Chinese and Russian prompts.
var labelKeywords = []struct {
	label    lineLabel
	keywords []string
}{
	{labelPinyin, []string{"pinyin", "拼音", "пиньинь"}},
	{labelTranslation, []string{"translation", "перевод", "翻译", "译文"}},
	{labelAnswer, []string{"answer", "答案", "ответ"}},
	{labelOptions, []string{"option", "choice", "选项", "вариант"}},
	{labelSentence, []string{"sentence", "句子", "例句", "предложение"}},
}

// scanLines applies the line heuristics: CJK lines are sentence candidates,
// labelled lines fill pinyin and translation, bullets become options.
func scanLines(text, word string) rawExercise {
	var (
		r           rawExercise
		labelled    string
		gapLine     string
		wordLine    string
		firstCJK    string
		bulletItems []string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, fence) || strings.Trim(line, "{}[],") == "" {
			continue
		}

		content, bulleted := stripBullet(line)
		label, value := splitLabel(content)
		switch label {
		case labelPinyin:
			if r.pinyin == "" {
				r.pinyin = value
			}
			continue
		case labelTranslation:
			if r.translation == "" {
				r.translation = value
			}
			continue
		case labelAnswer:
			continue
		case labelOptions:
			if len(r.options) == 0 {
				r.options = splitOptions(value)
			}
			continue
		case labelSentence:
			if labelled == "" {
				labelled = value
			}
			continue
		}

		switch {
		case gapRunRe.MatchString(content):
			if gapLine == "" {
				gapLine = content
			}
		case bulleted && utf8.RuneCountInString(content) <= maxOptionRunes:
			if opt := cleanOption(content); opt != "" && len(bulletItems) < domain.OptionCount {
				bulletItems = append(bulletItems, opt)
			}
		case containsHan(content):
			if firstCJK == "" {
				firstCJK = content
			}
			if wordLine == "" && word != "" && strings.Contains(content, word) {
				wordLine = content
			}
		}
	}

	for _, candidate := range []string{labelled, gapLine, wordLine, firstCJK} {
		if candidate != "" {
			r.sentence = candidate
			break
		}
	}

	if len(r.options) == 0 && len(bulletItems) > 0 {
		r.options = optionsWithWord(bulletItems, word)
	}
	return r
}

// optionsWithWord puts the target word first and keeps the other bullets
// after it, capped at the option count.
func optionsWithWord(items []string, word string) []string {
	if word == "" {
		return items
	}
	out := []string{word}
	for _, it := range items {
		if it != word && len(out) < domain.OptionCount {
			out = append(out, it)
		}
	}
	return out
}

func stripBullet(line string) (string, bool) {
	loc := bulletRe.FindStringIndex(line)
	if loc == nil {
		return line, false
	}
	rest := strings.TrimSpace(line[loc[1]:])
	if rest == "" {
		return line, false
	}
	return rest, true
}

// splitLabel recognises "Label: value" lines. Markdown emphasis around the
// label is ignored.
func splitLabel(line string) (lineLabel, string) {
	idx := strings.IndexAny(line, ":：")
	if idx <= 0 {
		return labelNone, ""
	}
	rawLabel := strings.Trim(line[:idx], " *#\"'`")
	if rawLabel == "" || utf8.RuneCountInString(rawLabel) > maxLabelRunes {
		return labelNone, ""
	}
	_, sepSize := utf8.DecodeRuneInString(line[idx:])
	value := strings.Trim(strings.TrimSpace(line[idx+sepSize:]), " *,\"'`")

	lower := strings.ToLower(rawLabel)
	for _, lk := range labelKeywords {
		for _, kw := range lk.keywords {
			if strings.Contains(lower, kw) {
				return lk.label, value
			}
		}
	}
	return labelNone, ""
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
