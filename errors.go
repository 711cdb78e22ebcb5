package confval

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedKey indicates a key without a registry definition, or a
	// static config without a slot for the key.
	ErrUndefinedKey = errors.New("confval: undefined option key")
	// ErrOptionNotSet indicates a lookup of a key the config does not hold.
	ErrOptionNotSet = errors.New("confval: option not set")
	// ErrUnknownEnumSymbol indicates enum text missing from the symbol table.
	ErrUnknownEnumSymbol = errors.New("confval: unknown enum symbol")
	// ErrMissingRatioTarget indicates a percentage whose RatioOver key is empty,
	// undefined or not set.
	ErrMissingRatioTarget = errors.New("confval: missing ratio_over target")
	// ErrRatioCycle indicates RatioOver references that loop back on
	// themselves.
	ErrRatioCycle = errors.New("confval: ratio_over cycle")
	// ErrTypeConflict indicates an option whose variant disagrees with the
	// declared definition type.
	ErrTypeConflict = errors.New("confval: option type conflict")
	// ErrNotNumeric indicates GetAbsValue was asked to resolve a non-numeric
	// option.
	ErrNotNumeric = errors.New("confval: option is not numeric")
	// ErrDuplicateKey indicates a key declared or bound twice.
	ErrDuplicateKey = errors.New("confval: duplicate option key")
	// ErrInvalidDefinition indicates an OptionDef that cannot be registered.
	ErrInvalidDefinition = errors.New("confval: invalid option definition")
)

// OptionError records the operation and key that produced an error.
type OptionError struct {
	Op  string
	Key string
	Err error
}

func (e *OptionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OptionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// wrapOptionError attaches op and key to err. Errors that already carry key
// metadata for the same key are returned unchanged.
func wrapOptionError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var optErr *OptionError
	if errors.As(err, &optErr) && optErr.Key == key {
		return err
	}
	return &OptionError{Op: op, Key: key, Err: err}
}

func typeConflict(want, got OptionType) error {
	return fmt.Errorf("%w: want %s, got %s", ErrTypeConflict, want, got)
}
