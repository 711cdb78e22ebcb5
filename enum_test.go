package confval

import (
	"errors"
	"slices"
	"testing"
)

type testFlavor int

const (
	flavorRepRap testFlavor = iota
	flavorTeacup
	flavorMakerWare
	flavorMach3
)

var testFlavorValues = SymbolTable{
	"reprap":    int(flavorRepRap),
	"teacup":    int(flavorTeacup),
	"makerware": int(flavorMakerWare),
	"mach3":     int(flavorMach3),
}

func (testFlavor) EnumValues() SymbolTable { return testFlavorValues }

func TestEnumSerializeUsesSymbol(t *testing.T) {
	opt := NewEnum(flavorTeacup)
	if got := opt.Serialize(); got != "teacup" {
		t.Fatalf("expected teacup, got %q", got)
	}
	opt.Value = testFlavor(99)
	if got := opt.Serialize(); got != "" {
		t.Fatalf("expected empty symbol for unknown value, got %q", got)
	}
}

func TestEnumDeserializeRejectsUnknownSymbol(t *testing.T) {
	opt := NewEnum(flavorMach3)
	err := opt.Deserialize("foo")
	if !errors.Is(err, ErrUnknownEnumSymbol) {
		t.Fatalf("expected ErrUnknownEnumSymbol, got %v", err)
	}
	if opt.Value != flavorMach3 {
		t.Fatalf("expected value untouched after failed deserialize, got %v", opt.Value)
	}

	if err := opt.Deserialize("makerware"); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if opt.Value != flavorMakerWare {
		t.Fatalf("expected makerware, got %v", opt.Value)
	}
}

func TestEnumGenericBorrowsTable(t *testing.T) {
	table := SymbolTable{"rectilinear": 0, "concentric": 1}
	opt := NewEnumGeneric(table, 0)

	if err := opt.Deserialize("honeycomb"); !errors.Is(err, ErrUnknownEnumSymbol) {
		t.Fatalf("expected unknown symbol error, got %v", err)
	}

	table["honeycomb"] = 2
	if err := opt.Deserialize("honeycomb"); err != nil {
		t.Fatalf("expected borrowed table to observe new symbol: %v", err)
	}
	if opt.Value != 2 {
		t.Fatalf("expected value 2, got %d", opt.Value)
	}

	var unbound EnumGeneric
	if got := unbound.Serialize(); got != "" {
		t.Fatalf("expected empty symbol without table, got %q", got)
	}
	if err := unbound.Deserialize("x"); !errors.Is(err, ErrUnknownEnumSymbol) {
		t.Fatalf("expected unknown symbol error without table, got %v", err)
	}
}

func TestSymbolTableOrdering(t *testing.T) {
	table := SymbolTable{"zeta": 1, "alpha": 1, "mid": 2}
	if got, _ := table.Symbol(1); got != "alpha" {
		t.Fatalf("expected alphabetically first symbol, got %q", got)
	}
	if _, ok := table.Symbol(5); ok {
		t.Fatalf("expected miss for unknown value")
	}
	if got := table.Symbols(); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("unexpected symbols %v", got)
	}
}
