package user

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
)

func validateNewUser(t *testing.T, pwd string) error {
	t.Helper()
	return core.Validate.Struct(NewUser{
		Username:        "jdoe",
		Name:            "John Doe",
		Role:            RoleMember,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
}

func passwordTag(t *testing.T, err error) string {
	t.Helper()
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "expected validator.ValidationErrors, got %T", err)
	for _, vErr := range vErrs {
		if vErr.Field() == "password" {
			return vErr.Tag()
		}
	}
	t.Fatal("no password error reported")
	return ""
}

func Test_passwordPolicy(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "valid", pwd: "G00d!pass"},
		{name: "too short", pwd: "Sh0rt!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "Bad pass0!", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "12345678", wantTag: pwdNotAllNumTag},
		{name: "no complexity", pwd: "alllowercase1", wantTag: pwdComplexityTag},
		{name: "similar to name", pwd: "J0hn!Doe", wantTag: pwdAttrSimTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNewUser(t, tt.pwd)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantTag, passwordTag(t, err))
		})
	}
}

func Test_roleValidation(t *testing.T) {
	assert.NoError(t, core.Validate.Var(RoleChair, "role"))
	assert.Error(t, core.Validate.Var(Role("admin"), "role"))
}
