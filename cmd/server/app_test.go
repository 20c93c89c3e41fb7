package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/platform/inference"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

func TestSetupGenerator_LMStudio(t *testing.T) {
	t.Parallel()

	gen, models, url, err := setupGenerator(context.Background(), config.GeneratorConfig{
		Provider:       config.ProviderLMStudio,
		BaseURL:        "http://localhost:1234/",
		TimeoutSeconds: 30,
	}, testLogger())

	require.NoError(t, err)
	assert.NotNil(t, gen)
	assert.NotNil(t, models)
	assert.Equal(t, "http://localhost:1234", url)
}

func TestSetupGenerator_LMStudioNeedsURL(t *testing.T) {
	t.Parallel()

	_, _, _, err := setupGenerator(context.Background(), config.GeneratorConfig{Provider: config.ProviderLMStudio}, testLogger())
	assert.Error(t, err)
}

func TestSetupTranslation(t *testing.T) {
	t.Parallel()

	sidecar, err := inference.New(inference.Config{BaseURL: "http://localhost:8000"}, testLogger())
	require.NoError(t, err)

	svc, cache, err := setupTranslation(context.Background(), config.TranslationConfig{Enabled: false}, sidecar, testLogger())
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.Nil(t, cache)

	svc, cache, err = setupTranslation(context.Background(), config.TranslationConfig{Enabled: true}, nil, testLogger())
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.Nil(t, cache)

	svc, cache, err = setupTranslation(context.Background(), config.TranslationConfig{Enabled: true}, sidecar, testLogger())
	require.NoError(t, err)
	assert.True(t, svc.Enabled())
	assert.Nil(t, cache)
}

func TestNewScorer(t *testing.T) {
	t.Parallel()

	assert.False(t, newScorer(nil, scoring.DefaultConfig(), testLogger()).Enabled())

	sidecar, err := inference.New(inference.Config{BaseURL: "http://localhost:8000"}, testLogger())
	require.NoError(t, err)
	assert.True(t, newScorer(sidecar, scoring.DefaultConfig(), testLogger()).Enabled())
}

func TestSetupArchive_Disabled(t *testing.T) {
	t.Parallel()

	db, store, err := setupArchive(context.Background(), config.DatabaseConfig{}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, db)
	assert.Nil(t, store)
}
