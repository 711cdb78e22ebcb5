package configfile

import (
	"errors"
	"fmt"
	"io"

	yaml "gopkg.in/yaml.v3"

	"github.com/goliatone/go-confval"
)

// EncodeYAML writes c as a flat YAML mapping of serialized values.
func EncodeYAML(w io.Writer, c confval.Config) error {
	table, err := textTable(c)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeYAML reads a YAML document into c. An empty document leaves c
// unchanged.
func DecodeYAML(r io.Reader, c confval.Config, ignoreNonexistent bool) error {
	var table map[string]any
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("reading yaml config: %w", err)
	}
	return applyTable("<yaml>", c, table, ignoreNonexistent)
}
