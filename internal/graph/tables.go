package graph

import (
	"fmt"
	"regexp"
)

// Tables names the four tables a SQL store uses.
type Tables struct {
	Labels        string `yaml:"labels,omitempty"`
	Relationships string `yaml:"relationships,omitempty"`
	Routes        string `yaml:"routes,omitempty"`
	Labelables    string `yaml:"labelables,omitempty"`
}

// DefaultTables returns the stock table names.
func DefaultTables() Tables {
	return Tables{
		Labels:        "labels",
		Relationships: "label_relationships",
		Routes:        "label_routes",
		Labelables:    "labelables",
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// withDefaults fills empty names and rejects anything that is not a plain
// identifier, since table names are interpolated into SQL.
func (t Tables) withDefaults() (Tables, error) {
	d := DefaultTables()
	if t.Labels == "" {
		t.Labels = d.Labels
	}
	if t.Relationships == "" {
		t.Relationships = d.Relationships
	}
	if t.Routes == "" {
		t.Routes = d.Routes
	}
	if t.Labelables == "" {
		t.Labelables = d.Labelables
	}
	for _, name := range []string{t.Labels, t.Relationships, t.Routes, t.Labelables} {
		if !identPattern.MatchString(name) {
			return Tables{}, fmt.Errorf("sqlstore: invalid table name %q", name)
		}
	}
	return t, nil
}
