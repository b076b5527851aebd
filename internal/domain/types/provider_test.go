package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProvider(t *testing.T) {
	assert.Equal(t, ProviderEmail, ParseProvider(""))
	assert.Equal(t, ProviderEmail, ParseProvider("email"))
	assert.Equal(t, ProviderGoogle, ParseProvider(" google "))
	assert.Equal(t, Provider("okta"), ParseProvider("okta"))
}

func TestSystemRolesCoverNames(t *testing.T) {
	for _, name := range SystemRoleNames {
		assert.NotEmpty(t, SystemRoles[name], name)
	}
	assert.Contains(t, SystemRoles[RoleOwner], PermChangeMemberRole)
	assert.NotContains(t, SystemRoles[RoleMember], PermDeleteTask)
}
