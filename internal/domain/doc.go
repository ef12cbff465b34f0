// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/task, domain/profile).
// This root package holds sentinel errors, validation types, identifiers,
// and the caller identity shared across all entities.
package domain
