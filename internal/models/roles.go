package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of employee roles.
type Role string

const (
	RoleEmployee  Role = "EMPLOYEE"
	RoleManager   Role = "MANAGER"
	RoleExecutive Role = "EXECUTIVE"
	RoleAdmin     Role = "ADMIN"
)

// NormalizeRole canonicalizes a role string: case-insensitive, surrounding
// and interior whitespace ignored. This is the single normalization point for
// every ingestion boundary (API bodies, imports); call sites must not
// re-implement it.
func NormalizeRole(value string) string {
	return strings.ToUpper(strings.Join(strings.Fields(value), "_"))
}

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	switch normalized := NormalizeRole(value); Role(normalized) {
	case RoleEmployee, RoleManager, RoleExecutive, RoleAdmin:
		return Role(normalized), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}
