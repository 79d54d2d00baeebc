// Package errors provides structured error types for the borsh module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidBoolean).
//		Path("user", "active").
//		Value(byte(2)).
//		Detail("boolean byte must be 0 or 1, got 2").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownDiscriminant(errors.PhaseDecode, path, 7)
//	err := errors.LengthTooLarge(errors.PhaseEncode, path, n, math.MaxUint32)
//
// Errors match with errors.Is on Phase and Kind. A target built with
// Sentinel carries no Phase and matches any error of the same Kind, which is
// how the codec package exposes ErrNaNNotAllowed and friends.
package errors
