// Package translation converts text between Chinese, English and Russian and
// romanizes Chinese into tone-marked pinyin.
//
// The machine translation itself lives behind the Translator interface (the
// inference sidecar in production). Service adds language detection and the
// pivot rules: Chinese and Russian are never translated into each other
// directly but through English. CachedTranslator memoizes translations in
// Redis.
package translation
