package translation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/mocks"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

func TestCacheKey(t *testing.T) {
	t.Parallel()

	key := translation.CacheKey("你好", domain.LanguageChinese, domain.LanguageEnglish)
	assert.Regexp(t, `^cloze:tr:zh:en:[0-9a-f]{40}$`, key)
	assert.Equal(t, key, translation.CacheKey("你好", domain.LanguageChinese, domain.LanguageEnglish))
	assert.NotEqual(t, key, translation.CacheKey("你好", domain.LanguageChinese, domain.LanguageRussian))
	assert.NotEqual(t, key, translation.CacheKey("您好", domain.LanguageChinese, domain.LanguageEnglish))
}

func TestCachedTranslator_HitAndMiss(t *testing.T) {
	t.Parallel()

	next := &mocks.MockTranslator{}
	cache := &mocks.MockCache{}
	tr := translation.NewCachedTranslator(next, cache, time.Hour, testLogger())

	first, err := tr.Translate(context.Background(), "你好", domain.LanguageChinese, domain.LanguageEnglish)
	require.NoError(t, err)
	second, err := tr.Translate(context.Background(), "你好", domain.LanguageChinese, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, "[zh->en] 你好", first)
	assert.Equal(t, first, second)
	assert.Len(t, next.Calls(), 1)
	assert.Equal(t, time.Hour, cache.TTL(translation.CacheKey("你好", domain.LanguageChinese, domain.LanguageEnglish)))
}

func TestCachedTranslator_CacheFailuresAreBypassed(t *testing.T) {
	t.Parallel()

	next := &mocks.MockTranslator{}
	cache := &mocks.MockCache{GetErr: errors.New("read"), SetErr: errors.New("write")}
	tr := translation.NewCachedTranslator(next, cache, time.Minute, testLogger())

	for i := 0; i < 2; i++ {
		out, err := tr.Translate(context.Background(), "hello", domain.LanguageEnglish, domain.LanguageRussian)
		require.NoError(t, err)
		assert.Equal(t, "[en->ru] hello", out)
	}
	assert.Len(t, next.Calls(), 2)
	assert.Zero(t, cache.Len())
}

func TestCachedTranslator_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	next := &mocks.MockTranslator{Err: errors.New("sidecar down")}
	cache := &mocks.MockCache{}
	tr := translation.NewCachedTranslator(next, cache, time.Minute, testLogger())

	_, err := tr.Translate(context.Background(), "hello", domain.LanguageEnglish, domain.LanguageChinese)
	assert.Error(t, err)
	assert.Zero(t, cache.Len())
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	t.Parallel()

	cache := translation.NewRedisCache("127.0.0.1:1")
	defer func() { _ = cache.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	assert.Error(t, cache.Ping(ctx))

	next := &mocks.MockTranslator{}
	tr := translation.NewCachedTranslator(next, cache, time.Minute, testLogger())
	out, err := tr.Translate(ctx, "hello", domain.LanguageEnglish, domain.LanguageChinese)
	require.NoError(t, err)
	assert.Equal(t, "[en->zh] hello", out)
}
