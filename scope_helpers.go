package confval

const (
	// Recommended priorities for common layering patterns. Higher numbers win.
	ScopePriorityDefaults = 100
	ScopePriorityPrinter  = 200
	ScopePriorityFilament = 300
	ScopePriorityPrint    = 400
	ScopePriorityObject   = 500
)

// DefaultsPrinterFilamentPrint assembles the canonical preset stack (defaults
// → printer → filament → print) and returns the merged config. Nil configs are
// treated as empty layers.
func DefaultsPrinterFilamentPrint(reg *Registry, defaults, printer, filament, printSettings *DynamicConfig, opts ...ConfigOption) (*DynamicConfig, error) {
	layers := []Layer{
		NewLayer(NewScope("print", ScopePriorityPrint, WithScopeLabel("Print Settings")), printSettings),
		NewLayer(NewScope("filament", ScopePriorityFilament, WithScopeLabel("Filament Settings")), filament),
		NewLayer(NewScope("printer", ScopePriorityPrinter, WithScopeLabel("Printer Settings")), printer),
		NewLayer(NewScope("defaults", ScopePriorityDefaults, WithScopeLabel("Defaults")), defaults),
	}
	stack, err := NewStack(layers...)
	if err != nil {
		return nil, err
	}
	return stack.Merge(reg, opts...)
}
