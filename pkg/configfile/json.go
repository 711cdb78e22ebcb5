package configfile

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
	"github.com/goliatone/go-confval/internal/hydrate"
)

// EncodeJSON writes c as a JSON object of host values: numbers, booleans,
// strings, lists and [x, y] pairs.
func EncodeJSON(w io.Writer, c confval.Config) error {
	values, err := bridge.Snapshot(c)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(values)
}

// DecodeJSON reads a JSON object into c.
func DecodeJSON(r io.Reader, c confval.Config, ignoreNonexistent bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	opts := []hydrate.DecoderOption{hydrate.WithUseNumber()}
	if ignoreNonexistent {
		opts = append(opts, hydrate.WithIgnoreUnknownKeys())
	}
	return hydrate.NewDecoder(opts...).DecodeJSON(hydrate.Context{Source: "<json>"}, data, c)
}
