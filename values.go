package confval

import "strings"

// Float holds a single floating point value.
type Float struct {
	Value float64
}

// NewFloat returns a Float holding v.
func NewFloat(v float64) *Float { return &Float{Value: v} }

func (o *Float) Type() OptionType { return TypeFloat }

func (o *Float) Serialize() string { return formatFloat(o.Value) }

// Deserialize parses the leading number in text. It never fails; text without
// a numeric prefix sets the value to 0.
func (o *Float) Deserialize(text string) error {
	o.Value = parseFloatPrefix(text)
	return nil
}

func (o *Float) Clone() Option {
	clone := *o
	return &clone
}

func (*Float) sealed() {}

// Int holds a single integer value.
type Int struct {
	Value int
}

// NewInt returns an Int holding v.
func NewInt(v int) *Int { return &Int{Value: v} }

func (o *Int) Type() OptionType { return TypeInt }

func (o *Int) Serialize() string { return formatInt(o.Value) }

// Deserialize parses the leading integer in text, yielding 0 on garbage.
func (o *Int) Deserialize(text string) error {
	o.Value = parseIntPrefix(text)
	return nil
}

func (o *Int) Clone() Option {
	clone := *o
	return &clone
}

func (*Int) sealed() {}

// Bool holds a single boolean, encoded as "1" or "0".
type Bool struct {
	Value bool
}

// NewBool returns a Bool holding v.
func NewBool(v bool) *Bool { return &Bool{Value: v} }

func (o *Bool) Type() OptionType { return TypeBool }

func (o *Bool) Serialize() string { return formatBool(o.Value) }

// Deserialize sets the value to true only for the exact text "1".
func (o *Bool) Deserialize(text string) error {
	o.Value = text == "1"
	return nil
}

func (o *Bool) Clone() Option {
	clone := *o
	return &clone
}

func (*Bool) sealed() {}

var (
	newlineEscaper   = strings.NewReplacer("\r", `\n`, "\n", `\n`)
	newlineUnescaper = strings.NewReplacer(`\n`, "\n")
)

// String holds free text. Line breaks are escaped on the wire so that every
// value fits on a single config line.
type String struct {
	Value string
}

// NewString returns a String holding v.
func NewString(v string) *String { return &String{Value: v} }

func (o *String) Type() OptionType { return TypeString }

// Serialize replaces every CR and LF with the two characters `\n`.
func (o *String) Serialize() string { return newlineEscaper.Replace(o.Value) }

// Deserialize turns every `\n` sequence back into a line feed.
func (o *String) Deserialize(text string) error {
	o.Value = newlineUnescaper.Replace(text)
	return nil
}

func (o *String) Clone() Option {
	clone := *o
	return &clone
}

func (*String) sealed() {}

// FloatOrPercent is a float that may be expressed as a percentage of another
// option, named by the definition's RatioOver key.
type FloatOrPercent struct {
	Value   float64
	Percent bool
}

// NewFloatOrPercent returns a FloatOrPercent holding v.
func NewFloatOrPercent(v float64, percent bool) *FloatOrPercent {
	return &FloatOrPercent{Value: v, Percent: percent}
}

func (o *FloatOrPercent) Type() OptionType { return TypeFloatOrPercent }

// AbsValue resolves the option against ratioOver, the absolute value of the
// option it is relative to. Plain values are returned unchanged.
func (o *FloatOrPercent) AbsValue(ratioOver float64) float64 {
	if o.Percent {
		return ratioOver * o.Value / 100
	}
	return o.Value
}

func (o *FloatOrPercent) Serialize() string {
	s := formatFloat(o.Value)
	if o.Percent {
		s += "%"
	}
	return s
}

// Deserialize treats any text containing '%' as a percentage of the leading
// number; other text is parsed as a plain float.
func (o *FloatOrPercent) Deserialize(text string) error {
	o.Value = parseFloatPrefix(text)
	o.Percent = strings.Contains(text, "%")
	return nil
}

func (o *FloatOrPercent) Clone() Option {
	clone := *o
	return &clone
}

func (*FloatOrPercent) sealed() {}

// Point holds a 2D coordinate.
//
// It serializes as "x,y" but accepts either ',' or 'x' between the two
// numbers when parsing. Points uses 'x' inside each point instead.
type Point struct {
	Value Pointf
}

// NewPoint returns a Point at (x, y).
func NewPoint(x, y float64) *Point { return &Point{Value: Pointf{X: x, Y: y}} }

func (o *Point) Type() OptionType { return TypePoint }

func (o *Point) Serialize() string {
	return formatFloat(o.Value.X) + "," + formatFloat(o.Value.Y)
}

func (o *Point) Deserialize(text string) error {
	o.Value = parsePoint(text, ",x")
	return nil
}

func (o *Point) Clone() Option {
	clone := *o
	return &clone
}

func (*Point) sealed() {}
