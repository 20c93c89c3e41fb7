package translation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

func TestPinyinRomanizer(t *testing.T) {
	t.Parallel()

	r := translation.NewPinyinRomanizer()

	tests := []struct {
		in   string
		want string
	}{
		{in: "你好", want: "nǐ hǎo"},
		{in: "你好，世界", want: "nǐ hǎo ， shì jiè"},
		{in: "我喜欢学习。", want: "wǒ xǐ huān xué xí 。"},
		{in: "我有3本书", want: "wǒ yǒu 3 běn shū"},
		{in: "hello 你好", want: "hello nǐ hǎo"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Romanize(tt.in))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want domain.Language
	}{
		{name: "chinese", in: "我喜欢学习中文", want: domain.LanguageChinese},
		{name: "mixed mostly latin with enough hanzi", in: "I like 银行", want: domain.LanguageChinese},
		{name: "russian", in: "Привет, как дела?", want: domain.LanguageRussian},
		{name: "english", in: "Hello world", want: domain.LanguageEnglish},
		{name: "empty", in: "", want: domain.LanguageEnglish},
		{name: "one in five is not enough", in: "abcd银", want: domain.LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, translation.DetectLanguage(tt.in))
		})
	}
}
