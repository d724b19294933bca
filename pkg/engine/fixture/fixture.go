// Package fixture describes a small store as YAML. The memory backend serves
// fixtures directly and backend tests use them to seed real stores.
package fixture

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fystack/wt-reader/pkg/engine"
)

type Fixture struct {
	Tables []Table `yaml:"tables"`
	// Metadata holds extra catalog entries (file:, colgroup:, index
	// tables...) that carry no records of their own.
	Metadata []Entry `yaml:"metadata"`
}

type Table struct {
	Name    string   `yaml:"name"`
	Config  string   `yaml:"config"`
	Records []Record `yaml:"records"`
}

// Record is one key/value pair. The *_hex forms take precedence and allow
// binary keys and values.
type Record struct {
	Key      string `yaml:"key"`
	Value    string `yaml:"value"`
	KeyHex   string `yaml:"key_hex"`
	ValueHex string `yaml:"value_hex"`
}

type Entry struct {
	URI    string `yaml:"uri"`
	Config string `yaml:"config"`
}

// KV is a decoded record.
type KV struct {
	Key   []byte
	Value []byte
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) Validate() error {
	seen := make(map[string]bool)
	for _, t := range f.Tables {
		if t.Name == "" {
			return fmt.Errorf("fixture table without name")
		}
		uri := engine.TableURI(t.Name)
		if seen[uri] {
			return fmt.Errorf("duplicate fixture entry %q", uri)
		}
		seen[uri] = true
		for i, r := range t.Records {
			if _, err := r.Decode(); err != nil {
				return fmt.Errorf("table %s record %d: %w", t.Name, i, err)
			}
		}
	}
	for _, e := range f.Metadata {
		if _, _, ok := engine.ParseURI(e.URI); !ok {
			return fmt.Errorf("invalid metadata uri %q", e.URI)
		}
		if seen[e.URI] {
			return fmt.Errorf("duplicate fixture entry %q", e.URI)
		}
		seen[e.URI] = true
	}
	return nil
}

func (r Record) Decode() (KV, error) {
	kv := KV{Key: []byte(r.Key), Value: []byte(r.Value)}
	if r.KeyHex != "" {
		b, err := hex.DecodeString(r.KeyHex)
		if err != nil {
			return KV{}, fmt.Errorf("key_hex: %w", err)
		}
		kv.Key = b
	}
	if r.ValueHex != "" {
		b, err := hex.DecodeString(r.ValueHex)
		if err != nil {
			return KV{}, fmt.Errorf("value_hex: %w", err)
		}
		kv.Value = b
	}
	return kv, nil
}

// Entries returns every catalog entry, tables included, sorted by URI.
func (f *Fixture) Entries() []Entry {
	out := make([]Entry, 0, len(f.Tables)+len(f.Metadata))
	for _, t := range f.Tables {
		out = append(out, Entry{URI: engine.TableURI(t.Name), Config: t.Config})
	}
	out = append(out, f.Metadata...)
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// KVs returns the decoded records of t in fixture order. Validate must
// have succeeded.
func (t Table) KVs() []KV {
	out := make([]KV, 0, len(t.Records))
	for _, r := range t.Records {
		kv, _ := r.Decode()
		out = append(out, kv)
	}
	return out
}
