package confval

import (
	"errors"
	"slices"
	"testing"
)

type testStatic struct {
	StaticConfig
	LayerHeight Float
	Perimeters  Int
}

type testPrintConfig struct {
	StaticConfig
	NozzleDiameter  Float
	ExtrusionWidth  FloatOrPercent
	BedShape        Points
	GCodeFlavor     Enum[testFlavor]
	SpiralVase      Bool
	StartGCode      String
	RetractSpeed    Floats
	WipeTowerOrigin Point
}

func newTestPrintConfig(t *testing.T) *testPrintConfig {
	t.Helper()
	reg := MustNewRegistry(
		OptionDef{Key: "nozzle_diameter", Type: TypeFloat, Default: "0.4"},
		OptionDef{Key: "extrusion_width", Type: TypeFloatOrPercent, RatioOver: "nozzle_diameter", Default: "110%"},
		OptionDef{Key: "bed_shape", Type: TypePoints, Default: "0x0,200x0,200x200,0x200"},
		OptionDef{Key: "gcode_flavor", Type: TypeEnum, EnumValues: testFlavorValues, Default: "reprap"},
		OptionDef{Key: "spiral_vase", Type: TypeBool},
		OptionDef{Key: "start_gcode", Type: TypeString, Default: `G28\nG1 Z5`},
		OptionDef{Key: "retract_speed", Type: TypeFloats, Default: "40"},
		OptionDef{Key: "wipe_tower_origin", Type: TypePoint},
		OptionDef{Key: "unbound_key", Type: TypeInt},
	)
	c := &testPrintConfig{}
	c.Init(reg)
	c.MustBind("nozzle_diameter", &c.NozzleDiameter)
	c.MustBind("extrusion_width", &c.ExtrusionWidth)
	c.MustBind("bed_shape", &c.BedShape)
	c.MustBind("gcode_flavor", &c.GCodeFlavor)
	c.MustBind("spiral_vase", &c.SpiralVase)
	c.MustBind("start_gcode", &c.StartGCode)
	c.MustBind("retract_speed", &c.RetractSpeed)
	c.MustBind("wipe_tower_origin", &c.WipeTowerOrigin)
	return c
}

func TestStaticConfigDefaults(t *testing.T) {
	c := newTestPrintConfig(t)

	if c.NozzleDiameter.Value != 0.4 {
		t.Fatalf("expected default nozzle diameter, got %v", c.NozzleDiameter.Value)
	}
	if c.StartGCode.Value != "G28\nG1 Z5" {
		t.Fatalf("expected unescaped start gcode, got %q", c.StartGCode.Value)
	}
	if c.GCodeFlavor.Value != flavorRepRap {
		t.Fatalf("expected reprap flavor, got %v", c.GCodeFlavor.Value)
	}
	if len(c.BedShape.Values) != 4 {
		t.Fatalf("expected 4 bed corners, got %v", c.BedShape.Values)
	}

	got, err := c.GetAbsValue("extrusion_width")
	if err != nil {
		t.Fatalf("abs value: %v", err)
	}
	if want := 0.44; !approxEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStaticConfigKeysAndLookup(t *testing.T) {
	c := newTestPrintConfig(t)

	want := []string{
		"bed_shape", "extrusion_width", "gcode_flavor", "nozzle_diameter",
		"retract_speed", "spiral_vase", "start_gcode", "wipe_tower_origin",
	}
	if got := c.Keys(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := c.Option("unbound_key", true); !errors.Is(err, ErrUndefinedKey) {
		t.Fatalf("expected ErrUndefinedKey for unbound key, got %v", err)
	}
	if err := c.SetDeserialize("unbound_key", "1"); !errors.Is(err, ErrUndefinedKey) {
		t.Fatalf("expected ErrUndefinedKey from set, got %v", err)
	}

	if err := c.SetDeserialize("gcode_flavor", "mach3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if c.GCodeFlavor.Value != flavorMach3 {
		t.Fatalf("expected field to observe the write, got %v", c.GCodeFlavor.Value)
	}
	c.SpiralVase.Value = true
	if got, _ := c.Serialize("spiral_vase"); got != "1" {
		t.Fatalf("expected serialize to observe the field, got %q", got)
	}
}

func TestStaticConfigBindErrors(t *testing.T) {
	c := newTestPrintConfig(t)

	if err := c.Bind("missing", &Int{}); !errors.Is(err, ErrUndefinedKey) {
		t.Fatalf("expected ErrUndefinedKey, got %v", err)
	}
	if err := c.Bind("unbound_key", &Float{}); !errors.Is(err, ErrTypeConflict) {
		t.Fatalf("expected ErrTypeConflict, got %v", err)
	}
	if err := c.Bind("nozzle_diameter", &Float{}); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if err := c.Bind("unbound_key", nil); !errors.Is(err, ErrInvalidDefinition) {
		t.Fatalf("expected ErrInvalidDefinition for nil option, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected MustBind to panic")
		}
	}()
	c.MustBind("missing", &Int{})
}

func TestStaticConfigRoundTripsThroughDynamic(t *testing.T) {
	c := newTestPrintConfig(t)
	if err := c.SetDeserialize("wipe_tower_origin", "180x140"); err != nil {
		t.Fatalf("set: %v", err)
	}

	dyn, err := NewDynamicFrom(c)
	if err != nil {
		t.Fatalf("dynamic from static: %v", err)
	}
	if dyn.Len() != len(c.Keys()) {
		t.Fatalf("expected every bound key copied, got %v", dyn.Keys())
	}
	if got, _ := dyn.Serialize("wipe_tower_origin"); got != "180,140" {
		t.Fatalf("unexpected origin %q", got)
	}
	opt, _ := dyn.Option("gcode_flavor", false)
	if _, ok := opt.(*EnumGeneric); !ok {
		t.Fatalf("expected dynamic enum to be generic, got %T", opt)
	}

	other := newTestPrintConfig(t)
	if err := dyn.SetDeserialize("nozzle_diameter", "0.6"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := other.Apply(dyn, false); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if other.NozzleDiameter.Value != 0.6 || other.WipeTowerOrigin.Value != (Pointf{180, 140}) {
		t.Fatalf("expected values copied back, got %v %v", other.NozzleDiameter.Value, other.WipeTowerOrigin.Value)
	}
}
