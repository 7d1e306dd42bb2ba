package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeToken builds an unsigned token carrying the given claims, matching the
// backend's JWT shape without a verifiable signature.
func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)

	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	return signed
}

func TestParseClaims(t *testing.T) {
	t.Parallel()

	token := makeToken(t, jwt.MapClaims{
		"id":   "usr1",
		"type": "auth",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "usr1", claims["id"])
	assert.Equal(t, "auth", claims["type"])
}

func TestParseClaims_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseClaims("not-a-jwt")
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		buffer  time.Duration
		expired bool
	}{
		{
			"valid for an hour",
			func(t *testing.T) string {
				return makeToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
			},
			30 * time.Second,
			false,
		},
		{
			"already expired",
			func(t *testing.T) string {
				return makeToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
			},
			30 * time.Second,
			true,
		},
		{
			"expires within buffer",
			func(t *testing.T) string {
				return makeToken(t, jwt.MapClaims{"exp": time.Now().Add(10 * time.Second).Unix()})
			},
			30 * time.Second,
			true,
		},
		{
			"no exp claim",
			func(t *testing.T) string {
				return makeToken(t, jwt.MapClaims{"id": "usr1"})
			},
			0,
			true,
		},
		{
			"malformed",
			func(*testing.T) string { return "garbage" },
			0,
			true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expired, TokenExpired(testCase.token(t), testCase.buffer))
		})
	}
}

func TestCredential_Valid(t *testing.T) {
	t.Parallel()

	var nilCred *Credential
	assert.False(t, nilCred.Valid())

	assert.False(t, (&Credential{}).Valid())

	expired := &Credential{Token: makeToken(t, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})}
	assert.False(t, expired.Valid())

	valid := &Credential{Token: makeToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})}
	assert.True(t, valid.Valid())
}
