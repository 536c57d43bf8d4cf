package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	token, exp, err := Generate(opts, "u1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	sub, err := VerifySubject(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "u1")
	require.NoError(t, err)

	_, err = VerifySubject(DefaultOptions([]byte("secret-b")), token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	claims := jwtlib.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(opts.Secret)
	require.NoError(t, err)

	_, err = VerifySubject(opts, token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := VerifySubject(DefaultOptions([]byte("test-secret")), "not.a.token")
	assert.Error(t, err)
}

func TestUnsupportedAlg(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	opts.Alg = "RS256"
	_, _, err := Generate(opts, "u1")
	assert.Error(t, err)
}

func TestAlgVariants(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512", "hs256", ""} {
		opts := DefaultOptions([]byte("test-secret"))
		opts.Alg = alg
		token, _, err := Generate(opts, "u1")
		require.NoError(t, err, alg)
		sub, err := VerifySubject(opts, token)
		require.NoError(t, err, alg)
		assert.Equal(t, "u1", sub)
	}
}
