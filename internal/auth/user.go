// Copyright (c) 2026 QVSLV. All rights reserved.
// Author: dev@qvslv.org

// Package auth implements the credential and session lifecycle of the QVSLV
// platform: registration, login, and bearer-session verification.
//
// # Architecture
//
// Entities in this file represent the "Truth" of the system. They have no
// dependencies on outer layers (databases, HTTP, or libraries), which keeps
// the core logic highly testable and resilient to technology changes.
package auth

import (
	"time"
)

// Role represents the clearance level attached to an account.
//
// # Scope
//
// QVSLV carries the role as a flat label only — there is no permission
// hierarchy behind it. Registration always stamps the configured default
// (VERIFIED); no other transition is defined in this service.
type Role string

const (
	RoleAnonymous  Role = "ANONYMOUS"  // Unconfirmed visitor.
	RoleVerified   Role = "VERIFIED"   // Default role granted at registration.
	RoleResearcher Role = "RESEARCHER" // Active field researcher.
	RoleExpert     Role = "EXPERT"     // Recognized domain expert.
	RoleGuardian   Role = "GUARDIAN"   // Custodian of restricted archives.
	RoleAdmin      Role = "ADMIN"      // Platform administration.
)

// Roles lists every valid role label.
var Roles = []Role{RoleAnonymous, RoleVerified, RoleResearcher, RoleExpert, RoleGuardian, RoleAdmin}

// ParseRole validates a role label (used for the REGISTRATION_ROLE setting).
func ParseRole(value string) (Role, bool) {
	for _, role := range Roles {
		if string(role) == value {
			return role, true
		}
	}
	return "", false
}

// Specialization is the research field a member declares at registration.
type Specialization string

const (
	SpecializationArchives      Specialization = "archives"
	SpecializationAncient       Specialization = "ancient"
	SpecializationSocial        Specialization = "social"
	SpecializationTech          Specialization = "tech"
	SpecializationConsciousness Specialization = "consciousness"
	SpecializationSymbols       Specialization = "symbols"
	SpecializationCrypto        Specialization = "crypto"
	SpecializationResearch      Specialization = "research"
)

// Specializations lists every valid specialization, in registration-form order.
var Specializations = []Specialization{
	SpecializationArchives,
	SpecializationAncient,
	SpecializationSocial,
	SpecializationTech,
	SpecializationConsciousness,
	SpecializationSymbols,
	SpecializationCrypto,
	SpecializationResearch,
}

// SpecializationValues returns the specialization labels as plain strings,
// in the shape the validator's OneOf rule expects.
func SpecializationValues() []string {
	values := make([]string, len(Specializations))
	for i, s := range Specializations {
		values[i] = string(s)
	}
	return values
}

// User represents a registered member of the QVSLV platform.
//
// # Rules
//   - Username is unique, compared case-insensitively.
//   - Email is unique, stored lower-cased and trimmed.
//   - PasswordHash is generated via bcrypt exclusively by the [Service]
//     and is never serialized outward.
//   - Role is never client-settable; registration stamps the configured default.
//
// JSON field names are camelCase to preserve the public API contract the
// QVSLV frontend was built against.
type User struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"` // Explicitly omitted from JSON for security.
	Specialization Specialization `json:"specialization"`
	Motivation     string         `json:"motivation"`
	Role           Role           `json:"role"`
	IsActive       bool           `json:"isActive"`
	LastLogin      *time.Time     `json:"lastLogin"`
	LoginCount     int            `json:"loginCount"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
