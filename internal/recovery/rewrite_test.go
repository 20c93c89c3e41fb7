package recovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"a" "b" 'c'`, NormalizeQuotes("\u201ca\u201d \u00abb\u00bb \u2018c\u2019"))
	assert.Equal(t, "plain", NormalizeQuotes("plain"))
}

func TestStripNonPrintable(t *testing.T) {
	t.Parallel()

	in := "\ufeff{\"a\":\u200b\"银行\"}\n\t\x00end"
	assert.Equal(t, "{\"a\":\"银行\"}\n\tend", StripNonPrintable(in))
}

func TestDropTrailingCommas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"array", `["a","b",]`, `["a","b"]`},
		{"object", `{"a":1,}`, `{"a":1}`},
		{"with whitespace", "{\"a\":[1,2,\n ],\n}", "{\"a\":[1,2]}"},
		{"untouched", `{"a":[1,2]}`, `{"a":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DropTrailingCommas(tt.in))
		})
	}
}

func TestQuoteBareKeys(t *testing.T) {
	t.Parallel()

	got := QuoteBareKeys(`{answer: "银行", options : ["a"], "pinyin": "x"}`)
	assert.Equal(t, `{"answer": "银行", "options" : ["a"], "pinyin": "x"}`, got)
}

func TestRewrite_ProducesValidJSON(t *testing.T) {
	t.Parallel()

	in := "{answer: “银行”, options: [“银行”, “公司”,],}"
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(Rewrite(in)), &obj))
	assert.Equal(t, "银行", obj["answer"])
	assert.Len(t, obj["options"], 2)
}

func TestRules_Order(t *testing.T) {
	t.Parallel()

	names := make([]string, 0, len(Rules))
	for _, r := range Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"normalize_quotes",
		"strip_non_printable",
		"drop_trailing_commas",
		"quote_bare_keys",
	}, names)
}
