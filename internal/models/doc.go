// Package models defines the core domain models for Dong.
//
// # Entities
//
//   - User: a registered account, referenced everywhere by its UUID
//   - Group: a named circle of users sharing expenses, keyed by a
//     6-letter short code
//   - Membership: the relationship record between one user and one
//     group (Left / Active / Invited)
//   - Expense: a logged cost, optionally attached to a group
//   - Share: one user's percentage slice of one expense, with a paid flag
//
// # Design Principles
//
// 1. **IDs over pointers**: relationships use ID fields, never embedded
// structs, to avoid circular references.
// 2. **Explicit enumerations**: membership state and settlement state are
// distinct named types even though both are small integers on the wire.
// 3. **Unix timestamps**: times are int64 Unix seconds; zero means
// "not set" (e.g. a membership that never reached Active has JoinedAt 0).
package models
