package faq

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKeyword     = errors.New("faq keyword is required")
	ErrEmptyAnswer      = errors.New("faq answer is required")
	ErrDuplicateKeyword = errors.New("duplicate faq keyword")
)

// Entry pairs a topic keyword with its canned answer.
type Entry struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Answer  string `json:"answer" yaml:"answer"`
}

// Table is an ordered, immutable keyword table. Lookups scan entries in
// slice order and the first keyword contained in the question wins, so a
// shorter keyword placed earlier shadows a longer phrase that contains it.
type Table struct {
	entries []Entry
}

// NewTable validates entries and returns a table preserving their order.
// Keywords are normalized to lower case.
func NewTable(entries []Entry) (*Table, error) {
	seen := make(map[string]struct{}, len(entries))
	items := make([]Entry, 0, len(entries))

	for i, entry := range entries {
		keyword := strings.ToLower(strings.TrimSpace(entry.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyKeyword)
		}
		if strings.TrimSpace(entry.Answer) == "" {
			return nil, fmt.Errorf("entry %d (%q): %w", i, keyword, ErrEmptyAnswer)
		}
		if _, dup := seen[keyword]; dup {
			return nil, fmt.Errorf("entry %d: %w: %q", i, ErrDuplicateKeyword, keyword)
		}
		seen[keyword] = struct{}{}
		items = append(items, Entry{Keyword: keyword, Answer: entry.Answer})
	}

	return &Table{entries: items}, nil
}

// MustNewTable is NewTable for compiled-in entries.
func MustNewTable(entries []Entry) *Table {
	table, err := NewTable(entries)
	if err != nil {
		panic("faq: " + err.Error())
	}
	return table
}

// Lookup returns the entry of the first keyword found in the lowercased
// question.
func (t *Table) Lookup(question string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}

	lowered := strings.ToLower(question)
	for _, entry := range t.entries {
		if strings.Contains(lowered, entry.Keyword) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Entries returns the table contents in lookup order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Len reports the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
