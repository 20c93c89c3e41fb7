package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

// TranslateCall records the arguments of one Translate call
type TranslateCall struct {
	Text string
	From domain.Language
	To   domain.Language
}

// MockTranslator implements translation.Translator for testing.
// Without TranslateFn it answers "[from->to] text".
type MockTranslator struct {
	TranslateFn func(ctx context.Context, text string, from, to domain.Language) (string, error)
	Err         error

	mu    sync.Mutex
	calls []TranslateCall
}

var _ translation.Translator = (*MockTranslator)(nil)

// Translate implements the translation.Translator interface
func (m *MockTranslator) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, TranslateCall{Text: text, From: from, To: to})
	m.mu.Unlock()

	if m.TranslateFn != nil {
		return m.TranslateFn(ctx, text, from, to)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("[%s->%s] %s", from, to, text), nil
}

// Calls returns every Translate call in order
func (m *MockTranslator) Calls() []TranslateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranslateCall(nil), m.calls...)
}

// MockCache implements translation.Cache with a map
type MockCache struct {
	GetErr error
	SetErr error

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

var _ translation.Cache = (*MockCache)(nil)

// Get implements the translation.Cache interface
func (m *MockCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements the translation.Cache interface
func (m *MockCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
		m.ttls = make(map[string]time.Duration)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

// TTL returns the ttl a key was stored with
func (m *MockCache) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Len returns the number of stored keys
func (m *MockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
