// Package ir provides the declaration intermediate representation for enumex.
//
// An EnumDecl is what the compiler produces from a CUE source and what the
// linker turns into a live enumeration type. This package contains data
// types and their canonical encoding only; it imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - member values are strings, int64, bools
//     or arrays/objects of those
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
//   - All JSON tags use snake_case
package ir
