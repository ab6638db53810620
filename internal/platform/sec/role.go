// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including other admins
	RoleSuper UserRole = "super"

	// Manages accounts and settings
	RoleAdmin UserRole = "admin"

	// Manages clients and their data
	RoleManager UserRole = "manager"

	// Paying customer account
	RoleClient UserRole = "client"

	// Default role for newly registered accounts
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-50) allows for future intermediate roles
	switch r {
	case RoleSuper:
		return 50
	case RoleAdmin:
		return 40
	case RoleManager:
		return 30
	case RoleClient:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
