package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestHMACVerifier(t *testing.T) {
	ctx := context.Background()
	v, err := NewHMACVerifier("0123456789abcdef-secret", "https://clerk.test")
	require.NoError(t, err)

	token, err := v.Issue(Claims{Subject: "user_1", Email: "a@example.com", FirstName: "Ann"}, time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.FirstName)

	expired, err := v.Issue(Claims{Subject: "user_1"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(ctx, expired)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	other, err := NewHMACVerifier("another-secret-of-length", "https://clerk.test")
	require.NoError(t, err)
	_, err = other.Verify(ctx, token)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	wrongIssuer, err := NewHMACVerifier("0123456789abcdef-secret", "https://elsewhere")
	require.NoError(t, err)
	_, err = wrongIssuer.Verify(ctx, token)
	assert.True(t, errors.Is(err, ErrTokenInvalid))

	_, err = NewHMACVerifier("short", "")
	assert.Error(t, err)
}
