package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Password(t *testing.T) {
	var acct Account
	require.NoError(t, acct.SetPassword("s3cret-pass"))
	assert.NotEmpty(t, acct.PasswordHash)
	assert.NotContains(t, string(acct.PasswordHash), "s3cret-pass")

	assert.NoError(t, acct.CheckPassword("s3cret-pass"))
	assert.Error(t, acct.CheckPassword("wrong"))
	assert.Error(t, acct.CheckPassword(""))
}

func TestAccount_DisplayName(t *testing.T) {
	acct := Account{Surname: "Doe", GivenName: "Jane"}
	assert.Equal(t, "Jane Doe", acct.DisplayName())
}

func TestRole_Valid(t *testing.T) {
	for _, role := range Roles {
		assert.True(t, role.Valid())
	}
	assert.False(t, Role("JANITOR").Valid())
}

func TestAccount_rolePredicates(t *testing.T) {
	assert.True(t, Account{Role: RoleDirector}.IsDirector())
	assert.True(t, Account{Role: RoleInstructor}.IsInstructor())
	assert.True(t, Account{Role: RoleStudent}.IsStudent())
	assert.False(t, Account{Role: RoleStudent}.IsDirector())
}
