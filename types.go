package confval

// OptionType tags the value shape declared for an option key.
type OptionType int

const (
	TypeFloat OptionType = iota
	TypeFloats
	TypeInt
	TypeInts
	TypeString
	TypeFloatOrPercent
	TypePoint
	TypePoints
	TypeBool
	TypeBools
	TypeEnum
)

var optionTypeNames = [...]string{
	TypeFloat:          "float",
	TypeFloats:         "floats",
	TypeInt:            "int",
	TypeInts:           "ints",
	TypeString:         "string",
	TypeFloatOrPercent: "float_or_percent",
	TypePoint:          "point",
	TypePoints:         "points",
	TypeBool:           "bool",
	TypeBools:          "bools",
	TypeEnum:           "enum",
}

func (t OptionType) String() string {
	if t.Valid() {
		return optionTypeNames[t]
	}
	return "unknown"
}

// Valid reports whether t names one of the declared option types.
func (t OptionType) Valid() bool {
	return t >= TypeFloat && int(t) < len(optionTypeNames)
}

// ParseOptionType converts the String form of an OptionType back into its
// value. The boolean is false for unrecognised names.
func ParseOptionType(name string) (OptionType, bool) {
	for i, candidate := range optionTypeNames {
		if candidate == name {
			return OptionType(i), true
		}
	}
	return 0, false
}

// Option is a single typed configuration value. The set of implementations is
// closed: only the variants declared in this package satisfy it.
type Option interface {
	// Type returns the variant tag, which must match the key's OptionDef.
	Type() OptionType
	// Serialize renders the value as config text.
	Serialize() string
	// Deserialize replaces the value with the one encoded in text.
	Deserialize(text string) error
	// Clone returns an independent copy of the value.
	Clone() Option

	sealed()
}

// Pointf is a 2D coordinate.
type Pointf struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
