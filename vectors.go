package confval

import (
	"slices"
	"strconv"
	"strings"
)

const listSeparator = ","

// Floats holds an ordered list of floats, serialized comma separated.
type Floats struct {
	Values []float64
}

// NewFloats returns a Floats holding a copy of values.
func NewFloats(values ...float64) *Floats { return &Floats{Values: slices.Clone(values)} }

func (o *Floats) Type() OptionType { return TypeFloats }

func (o *Floats) Serialize() string {
	return joinList(o.Values, formatFloat)
}

// Deserialize parses each comma separated item with the Float rules. An empty
// string yields an empty list.
func (o *Floats) Deserialize(text string) error {
	o.Values = parseList(text, parseFloatPrefix)
	return nil
}

func (o *Floats) Clone() Option { return &Floats{Values: slices.Clone(o.Values)} }

func (*Floats) sealed() {}

// Ints holds an ordered list of integers, serialized comma separated.
type Ints struct {
	Values []int
}

// NewInts returns an Ints holding a copy of values.
func NewInts(values ...int) *Ints { return &Ints{Values: slices.Clone(values)} }

func (o *Ints) Type() OptionType { return TypeInts }

func (o *Ints) Serialize() string {
	return joinList(o.Values, formatInt)
}

func (o *Ints) Deserialize(text string) error {
	o.Values = parseList(text, parseIntPrefix)
	return nil
}

func (o *Ints) Clone() Option { return &Ints{Values: slices.Clone(o.Values)} }

func (*Ints) sealed() {}

// Bools holds an ordered list of booleans, serialized as comma separated
// "1"/"0" items.
type Bools struct {
	Values []bool
}

// NewBools returns a Bools holding a copy of values.
func NewBools(values ...bool) *Bools { return &Bools{Values: slices.Clone(values)} }

func (o *Bools) Type() OptionType { return TypeBools }

func (o *Bools) Serialize() string {
	return joinList(o.Values, formatBool)
}

func (o *Bools) Deserialize(text string) error {
	o.Values = parseList(text, func(item string) bool { return item == "1" })
	return nil
}

func (o *Bools) Clone() Option { return &Bools{Values: slices.Clone(o.Values)} }

func (*Bools) sealed() {}

// Points holds an ordered list of 2D coordinates.
//
// Items are separated by ',' and each item separates its coordinates with 'x'
// ("0x0,200x0,200x200"). This differs from Point, which emits ','.
type Points struct {
	Values []Pointf
}

// NewPoints returns a Points holding a copy of values.
func NewPoints(values ...Pointf) *Points { return &Points{Values: slices.Clone(values)} }

func (o *Points) Type() OptionType { return TypePoints }

func (o *Points) Serialize() string {
	return joinList(o.Values, func(p Pointf) string {
		return formatFloat(p.X) + "x" + formatFloat(p.Y)
	})
}

// Deserialize splits text on ',' and each item on 'x'.
func (o *Points) Deserialize(text string) error {
	o.Values = parseList(text, func(item string) Pointf { return parsePoint(item, "x") })
	return nil
}

func (o *Points) Clone() Option { return &Points{Values: slices.Clone(o.Values)} }

func (*Points) sealed() {}

func joinList[T any](values []T, format func(T) string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = format(v)
	}
	return strings.Join(parts, listSeparator)
}

func parseList[T any](text string, parse func(string) T) []T {
	items := splitList(text, listSeparator)
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, parse(item))
	}
	return out
}

func formatInt(v int) string { return strconv.Itoa(v) }

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
