// Package snippets builds a testgen.SnippetMap from YAML front-matter
// documents mining real call-site usage examples for functions.
package snippets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/itsatony/testgen"
)

// Entry is one front-matter document: a function name plus the usage
// snippets mined for it.
type Entry struct {
	Function string   `yaml:"function"`
	Usages   []string `yaml:"usages"`
}

// Index is an in-memory lookup table from function name to its mined usage
// snippets, built once and read many times during a generation run.
type Index struct {
	byFunction map[string][]string
}

// NewIndex builds an Index from a slice of already-parsed entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{byFunction: make(map[string][]string, len(entries))}
	for _, e := range entries {
		idx.byFunction[e.Function] = append(idx.byFunction[e.Function], e.Usages...)
	}
	return idx
}

// LoadDir walks dir for "*.snippets.yaml" files, each containing a YAML
// document of the form:
//
//	function: titleCase
//	usages:
//	  - "titleCase('hello world')"
//	  - "titleCase(input)"
//
// and merges them into a single Index. Snippets for the same function name
// found in different files are concatenated, not overwritten.
func LoadDir(dir string) (*Index, error) {
	var entries []Entry

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".snippets.yaml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		var e Entry
		if err := yaml.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return NewIndex(entries), nil
}

// Lookup satisfies testgen.SnippetMap.
func (idx *Index) Lookup(functionName string) ([]string, bool) {
	snippets, ok := idx.byFunction[functionName]
	return snippets, ok
}

// AsSnippetMap adapts idx to the testgen.SnippetMap function type.
func (idx *Index) AsSnippetMap() testgen.SnippetMap {
	return idx.Lookup
}
