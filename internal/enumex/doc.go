// Package enumex implements extensible closed enumerations.
//
// Types are declared with a Builder against a list of bases: an enumeration
// ancestor (one of the roots Enum, IntEnum, StrEnum, ReprEnum, Flag, IntFlag
// or a previously built type), optional data carriers and markers. A
// descendant re-declares every member of its nearest ancestor and may add
// more; automatic numbering continues where the ancestor stopped.
//
// CONTRACTS:
//
// A type may declare capabilities (methods and properties) as abstract. While
// any capability resolved on a type is abstract the type is Abstract:
//   - New fails with ABSTRACT_INSTANTIATION listing the unmet names
//   - touching an unmet capability fails with ABSTRACT_ACCESS
//   - every other capability stays usable
//
// A subclass that implements every unmet capability is Concrete.
//
// DISPATCH:
//
// Every capability access, through a type or through a member, goes through
// one dispatcher per type. Enforcement runs first, then the optional
// interceptor. Accesses made from inside an interceptor with the context it
// received are re-entrant: they resolve directly, bypassing both enforcement
// and the interceptor. Guard state travels in the context, never in globals.
//
// FLAGS:
//
// Types descending from Flag compose with Or, And, Xor and Invert. Values
// carrying bits outside the defined flags are handled by the boundary policy
// (strict, conform, eject, keep). Only single-bit members are canonical;
// zero and multi-bit members are named but excluded from iteration.
package enumex
