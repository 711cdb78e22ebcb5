package configfile

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-confval"
)

// EncodeTOML writes c as a flat TOML table of serialized values.
func EncodeTOML(w io.Writer, c confval.Config) error {
	table, err := textTable(c)
	if err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(table)
}

// DecodeTOML reads a TOML document into c. See applyTable for the accepted
// value shapes.
func DecodeTOML(r io.Reader, c confval.Config, ignoreNonexistent bool) error {
	var table map[string]any
	if err := toml.NewDecoder(r).Decode(&table); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			line, _ := decodeErr.Position()
			return &ParseError{Path: "<toml>", Line: line, Message: decodeErr.Error(), Err: err}
		}
		return fmt.Errorf("reading toml config: %w", err)
	}
	return applyTable("<toml>", c, table, ignoreNonexistent)
}
