package echoapi

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shule-edu/shule/core/account"
)

func TestGetAccountClaims(t *testing.T) {
	ts := newTestServer(t) // runs initJWTConfig

	acct := account.Account{
		ID:                "INSTRUCTOR-1",
		Email:             "jane.doe@shule.local",
		Surname:           "Doe",
		GivenName:         "Jane",
		Role:              account.RoleInstructor,
		PasswordTemporary: true,
	}
	claims := GetAccountClaims(acct)
	assert.Equal(t, "Shule", claims.Issuer)
	assert.Equal(t, acct.ID, claims.Subject)
	assert.Equal(t, "jane.doe@shule.local", claims.Email)
	assert.Equal(t, "INSTRUCTOR", claims.Role)
	assert.Equal(t, "Doe", claims.Surname)
	assert.Equal(t, "Jane", claims.GivenName)
	assert.True(t, claims.PasswordTemporary)
	assert.InDelta(t, time.Now().Add(10*time.Minute).Unix(), claims.ExpiresAt, 5)

	// the token round-trips with the configured key
	token, err := GenerateToken(claims)
	require.NoError(t, err)

	parsed := new(Claims)
	_, err = jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (interface{}, error) {
		return ts.srv.deps.Conf.SecretKey, nil
	})
	require.NoError(t, err)
	assert.Equal(t, claims.Subject, parsed.Subject)
	assert.Equal(t, claims.Role, parsed.Role)
}
