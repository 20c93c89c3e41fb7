package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Word  string `json:"word"  validate:"required"`
	Level int    `json:"level" validate:"omitempty,min=1,max=9"`
}

type selfValidating struct {
	err error
}

func (s selfValidating) Validate() error { return s.err }

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    sampleRequest
		wantErr bool
	}{
		{name: "valid", body: `{"word":"银行","level":3}`, want: sampleRequest{Word: "银行", Level: 3}},
		{name: "unknown fields ignored", body: `{"word":"银行","extra":true}`, want: sampleRequest{Word: "银行"}},
		{name: "malformed", body: `{"word":`, wantErr: true},
		{name: "wrong type", body: `{"level":"three"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(tc.body))

			var got sampleRequest
			err := DecodeJSON(req, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	var got sampleRequest
	assert.ErrorIs(t, DecodeJSON(req, &got), ErrEmptyBody)

	req = httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(req, &got), ErrEmptyBody)
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Word: "银行"}))
	assert.NoError(t, ValidateRequest(&sampleRequest{Word: "银行", Level: 9}))
	assert.Error(t, ValidateRequest(&sampleRequest{}))
	assert.Error(t, ValidateRequest(&sampleRequest{Word: "银行", Level: 10}))

	assert.NoError(t, ValidateRequest(selfValidating{}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: assert.AnError}), assert.AnError)
}
