package codec

import "github.com/wippyai/borsh/errors"

// Kind-only sentinels for errors.Is. They match regardless of phase, so
// ErrNaNNotAllowed matches both encode and decode failures.
var (
	ErrInvalidBoolean       = errors.Sentinel(errors.KindInvalidBoolean)
	ErrInvalidOptionalTag   = errors.Sentinel(errors.KindInvalidOptionalTag)
	ErrUnknownDiscriminant  = errors.Sentinel(errors.KindUnknownDiscriminant)
	ErrNaNNotAllowed        = errors.Sentinel(errors.KindNaNNotAllowed)
	ErrDiscriminantTooLarge = errors.Sentinel(errors.KindDiscriminantTooLarge)
	ErrLengthTooLarge       = errors.Sentinel(errors.KindLengthTooLarge)
	ErrOutOfMemory          = errors.Sentinel(errors.KindAllocation)
	ErrUnexpectedEOF        = errors.Sentinel(errors.KindUnexpectedEOF)
	ErrTrailingBytes        = errors.Sentinel(errors.KindTrailingBytes)
	ErrInvalidUTF8          = errors.Sentinel(errors.KindInvalidUTF8)
)
