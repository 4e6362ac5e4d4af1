package layout

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const sf424Layout = `[
  {
    "type": "section",
    "name": "applicant",
    "label": "Applicant Information",
    "number": 1,
    "children": [
      {"type": "field", "definition": "/properties/applicant_name"},
      {"type": "field", "definition": "/properties/address/properties/zip", "widget": "Text"}
    ]
  },
  {"type": "field", "definition": "/properties/attachment", "widget": "Attachment"},
  {
    "type": "section",
    "name": "budget",
    "label": "Budget",
    "number": "2a",
    "children": [
      {"type": "field", "definition": "/properties/budget", "schema": {"title": "Total"}}
    ]
  }
]`

const sf424LayoutYAML = `
- type: section
  name: applicant
  label: Applicant Information
  number: "1"
  children:
    - type: field
      definition: /properties/applicant_name
`

func TestParse_JSONLayout(t *testing.T) {
	nodes, err := Parse([]byte(sf424Layout), "sf424.layout.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(nodes))
	}
	if nodes[0].Number != "1" || nodes[2].Number != "2a" {
		t.Fatalf("unexpected section numbers %q %q", nodes[0].Number, nodes[2].Number)
	}
	children := nodes[0].Children
	if len(children) != 2 || children[1].Definition != "/properties/address/properties/zip" {
		t.Fatalf("section children not preserved in order: %+v", children)
	}
	override := nodes[2].Children[0].Schema
	if override == nil || override.StringValue("title") != "Total" {
		t.Fatalf("inline schema override not decoded: %+v", override)
	}
}

func TestParse_YAMLLayout(t *testing.T) {
	nodes, err := Parse([]byte(sf424LayoutYAML), "sf424.layout.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Node{Section("applicant", "Applicant Information", Field("/properties/applicant_name"))}
	want[0].Number = "1"
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Fatalf("yaml layout mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		contains string
	}{
		{name: "empty", raw: "  ", contains: "is empty"},
		{name: "missing definition", raw: `[{"type": "field"}]`, contains: "[0] has no definition"},
		{name: "bad pointer", raw: `[{"type": "section", "name": "s", "children": [{"type": "field", "definition": "/a"}]}]`, contains: "[0].children[0]"},
		{name: "unnamed section", raw: `[{"type": "field", "definition": "/properties/a"}, {"type": "section"}]`, contains: "section at [1] has no name"},
		{name: "unknown type", raw: `[{"type": "multiField"}]`, contains: `unsupported type "multiField"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw), "form.layout.json")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("expected error containing %q, got %v", tc.contains, err)
			}
		})
	}
}

func TestLoadFS_IndexesByFormID(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/sf424.layout.json":       {Data: []byte(sf424Layout)},
		"forms/sflll.layout.yaml":       {Data: []byte(sf424LayoutYAML)},
		"forms/sf424.schema.json":       {Data: []byte(`{}`)},
		"forms/notes.txt":               {Data: []byte("ignored")},
		"forms/nested/other.layout.yml": {Data: []byte(sf424LayoutYAML)},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, id := range []string{"sf424", "sflll", "other"} {
		if _, ok := store.Layout(id); !ok {
			t.Fatalf("expected layout %q", id)
		}
	}
	if _, ok := store.Layout("notes"); ok {
		t.Fatalf("non-layout files must be ignored")
	}
}

func TestLoadFS_DuplicateFormID(t *testing.T) {
	fsys := fstest.MapFS{
		"a/sf424.layout.json": {Data: []byte(sf424Layout)},
		"b/sf424.layout.yaml": {Data: []byte(sf424LayoutYAML)},
	}
	if _, err := LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate layout") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := LoadFS(nil)
	if err != nil {
		t.Fatalf("load nil fs: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

func TestNavItems(t *testing.T) {
	nodes := []Node{
		Section("applicant", "Applicant",
			Section("contact", "Contact"),
			Section("address", "Address"),
		),
		Field("/properties/standalone"),
		Section("budget", "Budget",
			Section("hidden", "Hidden"),
			Field("/properties/budget"),
		),
		Section("unlabelled", ""),
	}

	want := []NavItem{
		{Href: "form-section-applicant", Text: "Applicant"},
		{Href: "form-section-contact", Text: "Contact"},
		{Href: "form-section-address", Text: "Address"},
		{Href: "form-section-budget", Text: "Budget"},
	}
	if diff := cmp.Diff(want, NavItems(nodes)); diff != "" {
		t.Fatalf("nav mismatch (-want +got):\n%s", diff)
	}
}
