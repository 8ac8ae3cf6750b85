package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "fitscribe.test", TokenTTL: time.Hour}

func TestIssueAndParseRoundTrip(t *testing.T) {
	identity := Identity{UserID: "user-1", DisplayName: "Alex"}

	token, sessionID, err := Issue(identity, testConfig)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, sessionID)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "Alex", claims.DisplayName)
	require.Equal(t, sessionID, claims.SessionID)
	require.True(t, claims.HasScope(ScopeJournalRead))
	require.True(t, claims.HasScope(ScopeJournalWrite))
	require.False(t, claims.HasScope("journal:admin"))
	require.Equal(t, identity, claims.Identity())
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := Parse("", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = Parse("   ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := Issue(Identity{UserID: "user-1"}, testConfig)
	require.NoError(t, err)

	_, err = Parse(token, Config{Secret: "other-secret", Issuer: testConfig.Issuer})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, _, err := Issue(Identity{UserID: "user-1"}, testConfig)
	require.NoError(t, err)

	_, err = Parse(token, Config{Secret: testConfig.Secret, Issuer: "someone-else"})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	expired := Config{Secret: testConfig.Secret, Issuer: testConfig.Issuer, TokenTTL: -time.Minute}
	token, _, err := Issue(Identity{UserID: "user-1"}, expired)
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRequiresSubjectAndSession(t *testing.T) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"iss": testConfig.Issuer,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizeScopesFormats(t *testing.T) {
	cases := map[string]interface{}{
		"interface slice": []interface{}{"journal:read", "journal:write"},
		"string slice":    []string{"journal:read", "journal:write"},
		"space separated": "journal:read journal:write",
	}
	for name, value := range cases {
		scopes := normalizeScopes(value)
		require.Len(t, scopes, 2, name)
		require.Contains(t, scopes, ScopeJournalRead, name)
		require.Contains(t, scopes, ScopeJournalWrite, name)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", hash)

	require.True(t, VerifyPassword(hash, "correct horse battery"))
	require.False(t, VerifyPassword(hash, "wrong password"))
}
