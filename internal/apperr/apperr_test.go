package apperr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	const fallback = "Failed to delete product. Please try again."
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"timeout", Timeout(errors.New("deadline")), TimeoutMessage},
		{"network", NetworkUnavailable(errors.New("refused")), NetworkMessage},
		{"unauthorized", Unauthorized(nil), UnauthorizedMessage},
		{"malformed", Malformed([]byte(`{"foo":1}`), nil), fallback},
		{"http with backend message", HTTP(404, nil, "Product not found"), "Product not found"},
		{"http without message", HTTP(500, nil, ""), fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.UserMessage(fallback))
		})
	}
}

func TestFromWrapped(t *testing.T) {
	err := errors.Wrap(HTTP(409, nil, "duplicate"), "create service")

	assert.True(t, Is(err, KindHTTP))
	assert.False(t, Is(err, KindTimeout))
	assert.Equal(t, 409, StatusOf(err))
	assert.Equal(t, "duplicate", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("raw"), "fallback"))
	assert.Equal(t, 0, StatusOf(errors.New("raw")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "malformed_response", KindMalformedResponse.String())
	assert.Equal(t, "invalid_request", KindInvalidRequest.String())
	assert.Equal(t, "unknown(42)", Kind(42).String())
}
