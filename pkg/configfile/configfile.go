// Package configfile reads and writes configs as text files. The native format
// is one "key = value" line per option, using each option's serialized text.
// TOML and YAML documents are also supported through flat key tables.
package configfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

// ParseError represents an error while reading a config document.
type ParseError struct {
	Path    string
	Line    int
	Key     string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	if e.Key != "" {
		return fmt.Sprintf("parse error in %s at key %q: %s", e.Path, e.Key, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Write emits every key of c as a "key = value" line in key order.
func Write(w io.Writer, c confval.Config) error {
	buf := bufio.NewWriter(w)
	for _, key := range c.Keys() {
		value, err := confval.Serialize(c, key)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(buf, "%s = %s\n", key, value); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// Read parses "key = value" lines from r into c. Blank lines and lines
// starting with '#' or ';' are skipped. Keys c cannot hold fail unless
// ignoreNonexistent is set.
func Read(r io.Reader, c confval.Config, ignoreNonexistent bool) error {
	return read("<reader>", r, c, ignoreNonexistent)
}

func read(source string, r io.Reader, c confval.Config, ignoreNonexistent bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' || text[0] == ';' {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return &ParseError{Path: source, Line: line, Message: "expected key = value"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return &ParseError{Path: source, Line: line, Message: "empty key"}
		}
		err := confval.SetDeserialize(c, key, strings.TrimSpace(value))
		if err != nil && ignoreNonexistent && errors.Is(err, confval.ErrUndefinedKey) {
			continue
		}
		if err != nil {
			return &ParseError{Path: source, Line: line, Key: key, Message: err.Error(), Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading config %s: %w", source, err)
	}
	return nil
}

// ReadFile loads the config file at path into c.
func ReadFile(path string, c confval.Config, ignoreNonexistent bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()
	return read(path, f, c, ignoreNonexistent)
}

// WriteFile stores c at path in the line format.
func WriteFile(path string, c confval.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	if err := Write(f, c); err != nil {
		f.Close()
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return f.Close()
}

// textTable returns the serialized text of every key of c.
func textTable(c confval.Config) (map[string]string, error) {
	out := make(map[string]string)
	for _, key := range c.Keys() {
		value, err := confval.Serialize(c, key)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// applyTable writes a decoded document into c in key order. Strings are parsed
// with the option's text rules; other scalars and lists go through the bridge.
// Nested tables are flattened one level, so options may be grouped under
// arbitrary section names.
func applyTable(source string, c confval.Config, table map[string]any, ignoreNonexistent bool) error {
	for _, key := range slices.Sorted(maps.Keys(table)) {
		value := table[key]
		if section, ok := value.(map[string]any); ok {
			if err := applySection(source, c, section, ignoreNonexistent); err != nil {
				return err
			}
			continue
		}
		if err := applyValue(source, c, key, value, ignoreNonexistent); err != nil {
			return err
		}
	}
	return nil
}

func applySection(source string, c confval.Config, section map[string]any, ignoreNonexistent bool) error {
	for _, key := range slices.Sorted(maps.Keys(section)) {
		if err := applyValue(source, c, key, section[key], ignoreNonexistent); err != nil {
			return err
		}
	}
	return nil
}

func applyValue(source string, c confval.Config, key string, value any, ignoreNonexistent bool) error {
	var err error
	if text, ok := value.(string); ok {
		err = confval.SetDeserialize(c, key, text)
	} else {
		err = bridge.Set(c, key, value)
	}
	if err != nil && ignoreNonexistent && errors.Is(err, confval.ErrUndefinedKey) {
		return nil
	}
	if err != nil {
		return &ParseError{Path: source, Key: key, Message: err.Error(), Err: err}
	}
	return nil
}
