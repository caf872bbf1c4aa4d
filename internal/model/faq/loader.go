package faq

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk FAQ format. Entries is a sequence so the lookup order
// is exactly the order written in the file.
//
// Example:
//
//	entries:
//	  - keyword: "tickets"
//	    answer: "Disney offers a variety of ticket options..."
type File struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFile reads a FAQ table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("faq: open %q: %w", path, err)
	}
	defer f.Close()

	table, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("faq: parse %q: %w", path, err)
	}
	return table, nil
}

// LoadFromReader parses a FAQ table from YAML. Unknown keys are rejected.
func LoadFromReader(r io.Reader) (*Table, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode faq yaml: %w", err)
	}
	if len(file.Entries) == 0 {
		return nil, fmt.Errorf("faq file has no entries")
	}
	return NewTable(file.Entries)
}
