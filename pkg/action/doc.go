// Package action defines a convention for immutable event records and the
// pure functions that construct, validate, and transition them.
//
// An action is a plain data record with a type, an optional payload, an
// error flag, and a metadata block carrying identity, lineage, and (for
// async actions) lifecycle state. Records are immutable by convention:
// every transforming function returns a new record and never mutates its
// input. The package performs no I/O and holds no state; the only impure
// inputs are the clock (injectable via Factory) and the random source used
// for unique identifiers.
//
// Key design constraints:
//   - Payloads are restricted to the sealed Value universe (null, string,
//     int, float, bool, array, object) - no functions, no domain objects,
//     no cycles.
//   - Non-unique identifiers derive deterministically from the canonical
//     JSON form of [type, payload]; equal content means equal id.
//   - Validation is an exact-key-set check over a closed schema; unknown
//     keys invalidate the whole record.
//   - Accessors, predicates, transitions, and lineage functions verify
//     their inputs and signal usage errors instead of guessing.
package action
