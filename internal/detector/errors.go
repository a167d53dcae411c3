package detector

import "errors"

var (
	// ErrUnknownRegion is returned by New when the configured region does
	// not name a built-in pattern bundle.
	ErrUnknownRegion = errors.New("unknown region")
	// ErrUnknownLevel is returned when the detection level is not one of
	// strict, moderate, lenient.
	ErrUnknownLevel = errors.New("unknown detection level")
	// ErrUnknownStrategy is returned when the redaction strategy is not one
	// of token, hash, category.
	ErrUnknownStrategy = errors.New("unknown redaction strategy")
	// ErrInvalidPattern is returned by New when a pattern definition does
	// not compile, can match the empty string, or is otherwise malformed.
	// It is never returned after construction.
	ErrInvalidPattern = errors.New("invalid pattern definition")
	// ErrUnknownValidator is returned by New when a pattern references a
	// validator id that is not registered.
	ErrUnknownValidator = errors.New("unknown validator")
	// ErrRestoreMismatch is returned by Restore when the supplied mapping
	// contains a key that is not a well-formed redaction token. Restoring
	// with such a mapping could corrupt the output, so we fail instead.
	ErrRestoreMismatch = errors.New("mapping key is not a redaction token")
)
