package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/kudos/internal/models"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"employee", "EMPLOYEE"},
		{"  Manager ", "MANAGER"},
		{"EXECUTIVE", "EXECUTIVE"},
		{"ad min", "AD_MIN"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.NormalizeRole(tt.in), "input %q", tt.in)
	}
}

func TestParseRole(t *testing.T) {
	role, err := models.ParseRole("  admin ")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	role, err = models.ParseRole("Employee")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, role)

	_, err = models.ParseRole("intern")
	assert.Error(t, err)

	_, err = models.ParseRole("")
	assert.Error(t, err)
}
