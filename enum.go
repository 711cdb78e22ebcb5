package confval

import (
	"fmt"
	"maps"
	"slices"
)

// SymbolTable maps enum symbols to their integer values.
type SymbolTable map[string]int

// Value returns the integer registered for symbol.
func (t SymbolTable) Value(symbol string) (int, bool) {
	v, ok := t[symbol]
	return v, ok
}

// Symbol returns the symbol registered for value. When several symbols share a
// value the alphabetically first one wins.
func (t SymbolTable) Symbol(value int) (string, bool) {
	for _, symbol := range t.Symbols() {
		if t[symbol] == value {
			return symbol, true
		}
	}
	return "", false
}

// Symbols returns every symbol in alphabetical order.
func (t SymbolTable) Symbols() []string {
	return slices.Sorted(maps.Keys(t))
}

// Clone returns an independent copy of the table.
func (t SymbolTable) Clone() SymbolTable {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// EnumType is implemented by integer enum types that carry their own symbol
// table. EnumValues is called on the zero value and should return a
// package-level table.
type EnumType interface {
	~int
	EnumValues() SymbolTable
}

// Enum holds a value of a compile-time enum type T. Use it for fields of a
// static config; dynamic configs create EnumGeneric options instead.
type Enum[T EnumType] struct {
	Value T
}

// NewEnum returns an Enum holding v.
func NewEnum[T EnumType](v T) *Enum[T] { return &Enum[T]{Value: v} }

func (o *Enum[T]) Type() OptionType { return TypeEnum }

// Symbols returns the symbol table of T.
func (o *Enum[T]) Symbols() SymbolTable {
	var zero T
	return zero.EnumValues()
}

// Serialize returns the symbol for the current value, or "" when the value is
// not in the table.
func (o *Enum[T]) Serialize() string {
	symbol, _ := o.Symbols().Symbol(int(o.Value))
	return symbol
}

// Deserialize requires text to be a known symbol and fails with
// ErrUnknownEnumSymbol otherwise, leaving the value untouched.
func (o *Enum[T]) Deserialize(text string) error {
	v, ok := o.Symbols().Value(text)
	if !ok {
		return unknownSymbol(text)
	}
	o.Value = T(v)
	return nil
}

func (o *Enum[T]) Clone() Option {
	clone := *o
	return &clone
}

func (*Enum[T]) sealed() {}

// EnumGeneric holds an enum value whose symbol table is only known at runtime.
//
// Symbols is borrowed, never copied: it normally points at the table owned by
// the key's OptionDef, and that owner must outlive the option.
type EnumGeneric struct {
	Value   int
	Symbols SymbolTable
}

// NewEnumGeneric returns an EnumGeneric bound to symbols.
func NewEnumGeneric(symbols SymbolTable, value int) *EnumGeneric {
	return &EnumGeneric{Value: value, Symbols: symbols}
}

func (o *EnumGeneric) Type() OptionType { return TypeEnum }

func (o *EnumGeneric) Serialize() string {
	symbol, _ := o.Symbols.Symbol(o.Value)
	return symbol
}

func (o *EnumGeneric) Deserialize(text string) error {
	v, ok := o.Symbols.Value(text)
	if !ok {
		return unknownSymbol(text)
	}
	o.Value = v
	return nil
}

// Clone copies the value and shares the borrowed symbol table.
func (o *EnumGeneric) Clone() Option {
	clone := *o
	return &clone
}

func (*EnumGeneric) sealed() {}

func unknownSymbol(text string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEnumSymbol, text)
}
