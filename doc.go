// Package confval implements typed configuration values for parametric tools.
//
// Every option key is declared once in a Registry through an OptionDef, which
// fixes the key's OptionType, its labels, the optional RatioOver key used to
// resolve percentages and, for enums, the SymbolTable. Option values are a
// closed family of variants (Float, Floats, Int, Ints, Bool, Bools, String,
// FloatOrPercent, Point, Points, Enum and EnumGeneric) that share a text
// serialization contract:
//
//	opt.Deserialize(opt.Serialize()) // reconstructs an equivalent value
//
// Two stores satisfy the Config interface:
//
//   - DynamicConfig owns an open key -> Option map and creates options lazily
//     from their definitions.
//   - StaticConfig is embedded by application structs that expose one field per
//     option and bind those fields to keys at construction time.
//
// The algorithms Apply, Serialize, SetDeserialize and GetAbsValue are written
// purely against Config, so they behave identically on both stores:
//
//	reg := confval.MustNewRegistry(
//	    confval.OptionDef{Key: "nozzle_diameter", Type: confval.TypeFloat, Default: "0.4"},
//	    confval.OptionDef{Key: "extrusion_width", Type: confval.TypeFloatOrPercent, RatioOver: "nozzle_diameter"},
//	)
//	cfg := confval.NewDynamicConfig(reg)
//	_ = cfg.SetDeserialize("nozzle_diameter", "0.5")
//	_ = cfg.SetDeserialize("extrusion_width", "150%")
//	width, _ := cfg.GetAbsValue("extrusion_width") // 0.75
//
// Numeric, boolean and point parsing is permissive: malformed text degrades to
// zero values instead of failing. Unknown enum symbols and keys without a
// definition are reported as errors.
//
// A Registry is immutable once built and may be shared between goroutines.
// Individual configs are not safe for concurrent mutation.
package confval
