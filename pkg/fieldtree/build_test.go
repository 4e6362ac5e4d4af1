package fieldtree_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/pkg/fieldtree"
	"github.com/goliatone/go-applyform/pkg/layout"
	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/validation"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

const grantSchema = `{
  "type": "object",
  "required": ["project_title", "address", "funding_type"],
  "properties": {
    "project_title": {
      "allOf": [{"type": "string", "maxLength": 250}],
      "title": "Project Title <b>(required)</b>"
    },
    "summary": {
      "type": "string",
      "maxLength": 4000,
      "title": "Summary",
      "description": "See <a href=\"https://example.gov/help\">help</a><script>alert(1)</script>"
    },
    "funding_type": {"type": "string", "enum": ["Grant", "Loan"], "title": "Funding Type"},
    "is_delinquent": {"type": "boolean", "title": "Delinquent on federal debt?"},
    "budget": {"type": "number", "title": "Budget"},
    "placeholder": {"type": "null"},
    "address": {
      "type": "object",
      "title": "Applicant Address",
      "required": ["zip"],
      "properties": {
        "street": {"type": "string", "title": "Street"},
        "zip": {"type": "string", "title": "Zip Code", "maxLength": 10}
      }
    },
    "unused": {"type": "string"}
  }
}`

func parseSchema(t *testing.T, raw string) *schema.Node {
	t.Helper()
	obj, err := schema.DecodeObject([]byte(raw))
	require.NoError(t, err)
	node, err := schema.Parse(obj)
	require.NoError(t, err)
	return node
}

func grantLayout() []layout.Node {
	budget := layout.Field("/properties/budget")
	budget.Schema = schema.ObjectFromMap(map[string]any{"title": "Total Budget", "minimum": 0.0})
	return []layout.Node{
		layout.Section("project", "Project",
			layout.Field("/properties/project_title"),
			layout.Field("/properties/summary"),
			layout.Field("/properties/funding_type"),
		),
		layout.Section("applicant", "Applicant",
			layout.Field("/properties/address/properties/street"),
			layout.Field("/properties/address/properties/zip"),
			layout.Section("empty", "Nothing here"),
		),
		layout.Field("/properties/is_delinquent"),
		budget,
		layout.Field("/properties/placeholder"),
	}
}

func TestBuild_SingleField(t *testing.T) {
	root := parseSchema(t, `{"type": "object", "properties": {"a": {"type": "string"}}}`)

	tree, err := fieldtree.Build([]layout.Node{layout.Field("/properties/a")}, root, map[string]any{"a": "x"})
	require.NoError(t, err)
	require.Len(t, tree, 1)

	field := tree[0]
	assert.True(t, field.IsField())
	assert.Equal(t, "a", field.Name)
	assert.Equal(t, "a", field.ID)
	assert.Equal(t, "$.a", field.Path)
	assert.Equal(t, "x", field.Value)
	assert.Equal(t, widgets.WidgetText, field.Widget)
	assert.Empty(t, field.Errors)
}

func TestBuild_UnknownFieldIsConfigError(t *testing.T) {
	root := parseSchema(t, `{"type": "object", "properties": {"a": {"type": "string"}}}`)
	nodes := []layout.Node{
		layout.Section("s", "Section", layout.Field("/properties/a"), layout.Field("/properties/missing")),
	}

	_, err := fieldtree.Build(nodes, root, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fieldtree.ErrUnknownField))

	var cfgErr *fieldtree.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "/properties/missing", cfgErr.Definition)
	assert.Equal(t, "[0].children[1]", cfgErr.Location)
	assert.Contains(t, err.Error(), "/properties/missing")
}

func TestBuild_SectionsAndFields(t *testing.T) {
	root := parseSchema(t, grantSchema)
	data := map[string]any{
		"project_title": "Bridges",
		"address":       map[string]any{"zip": "12345"},
		"is_delinquent": false,
	}

	tree, err := fieldtree.Build(grantLayout(), root, data)
	require.NoError(t, err)
	require.Len(t, tree, 5)

	project := tree[0]
	require.True(t, project.IsSection())
	assert.Equal(t, "form-section-project", project.Anchor)
	require.Len(t, project.Children, 3)

	title := project.Children[0]
	assert.Equal(t, "Project Title (required)", title.Title, "markup stripped from titles")
	assert.Equal(t, "Bridges", title.Value)
	assert.True(t, title.Required)
	assert.Equal(t, 250, *title.MaxLength, "wrapped definition folded")

	summary := project.Children[1]
	assert.Equal(t, widgets.WidgetTextArea, summary.Widget)
	assert.Contains(t, summary.Description, `href="https://example.gov/help"`)
	assert.NotContains(t, summary.Description, "<script>")
	assert.False(t, summary.Required)
	assert.Nil(t, summary.Value)

	funding := project.Children[2]
	assert.Equal(t, widgets.WidgetSelect, funding.Widget)
	assert.Equal(t, "- Select -", funding.EmptyLabel)
	assert.Equal(t, []fieldtree.Choice{{Value: "Grant", Label: "Grant"}, {Value: "Loan", Label: "Loan"}}, funding.Options)

	applicant := tree[1]
	require.Len(t, applicant.Children, 3)
	zip := applicant.Children[1]
	assert.Equal(t, "address--zip", zip.ID)
	assert.Equal(t, "12345", zip.Value)
	assert.True(t, zip.Required)
	assert.False(t, applicant.Children[0].Required, "street is not required")
	assert.Empty(t, applicant.Children[2].Children, "empty sections are legal")

	delinquent := tree[2]
	assert.Equal(t, widgets.WidgetCheckbox, delinquent.Widget)
	assert.Equal(t, false, delinquent.Value)

	budget := tree[3]
	assert.Equal(t, "Total Budget", budget.Title, "inline schema wins")
	assert.Equal(t, schema.KindNumber, budget.Schema.Kind, "definition fills the rest")
	require.NotNil(t, budget.Schema.Minimum)
	assert.Equal(t, 0.0, *budget.Schema.Minimum)

	assert.True(t, tree[4].Disabled, "null-typed fields are disabled")
}

func TestBuild_RadioOptionsForBoolean(t *testing.T) {
	root := parseSchema(t, grantSchema)
	node := layout.Field("/properties/is_delinquent")
	node.Widget = widgets.WidgetRadio

	tree, err := fieldtree.Build([]layout.Node{node}, root, nil)
	require.NoError(t, err)
	assert.Equal(t, []fieldtree.Choice{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}, tree[0].Options)
	assert.Empty(t, tree[0].EmptyLabel)
}

func TestBuild_Deterministic(t *testing.T) {
	root := parseSchema(t, grantSchema)
	data := map[string]any{"project_title": "Bridges", "address": map[string]any{"street": "Main"}}
	warnings := []validation.Warning{{Field: "$.address", Message: "'zip' is a required property", Type: "required"}}

	first, err := fieldtree.Build(grantLayout(), root, data, fieldtree.WithWarnings(warnings))
	require.NoError(t, err)
	second, err := fieldtree.Build(grantLayout(), root, data, fieldtree.WithWarnings(warnings))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("builds differ (-first +second):\n%s", diff)
	}
}

func TestBuild_AttachesWarnings(t *testing.T) {
	root := parseSchema(t, grantSchema)
	warnings := []validation.Warning{
		{Field: "$", Message: "'project_title' is a required property", Type: "required"},
		{Field: "$.address", Message: "'zip' is a required property", Type: "required"},
		{Field: "$.summary", Message: "String length must be less than or equal to 4000", Type: "string_lte"},
	}

	tree, err := fieldtree.Build(grantLayout(), root, nil, fieldtree.WithWarnings(warnings))
	require.NoError(t, err)

	project := tree[0].Children
	assert.Equal(t, []string{"Project Title (required) is required"}, project[0].Errors)
	assert.Equal(t, []string{"String length must be less than or equal to 4000"}, project[1].Errors)
	assert.Empty(t, project[2].Errors, "funding_type is not named by any warning")

	applicant := tree[1].Children
	assert.Empty(t, applicant[0].Errors, "street is not named by the zip warning")
	assert.Equal(t, []string{"Applicant Address Zip Code is required"}, applicant[1].Errors)
}

func TestCollectWarnings_LayoutOrder(t *testing.T) {
	root := parseSchema(t, grantSchema)
	warnings := []validation.Warning{
		{Field: "$.address", Message: "'zip' is a required property", Type: "required"},
		{Field: "$", Message: "'funding_type' is a required property", Type: "required"},
		{Field: "$.unrelated", Message: "ignored", Type: "other"},
	}

	collected, err := fieldtree.CollectWarnings(grantLayout(), root, warnings)
	require.NoError(t, err)
	require.Len(t, collected, 2)

	assert.Equal(t, "/properties/funding_type", collected[0].Definition)
	assert.Equal(t, "Funding Type is required", collected[0].Formatted)
	assert.Equal(t, "funding_type", collected[0].HTMLField)

	assert.Equal(t, "address--zip", collected[1].HTMLField)
	assert.Equal(t, "$.address", collected[1].Field)
}

func TestBuild_CustomDelimiterAndRegistry(t *testing.T) {
	root := parseSchema(t, grantSchema)
	registry := widgets.NewRegistry()
	registry.Register("ZipCode", 500, func(node *schema.Node) bool {
		return node.Title == "Zip Code"
	})

	tree, err := fieldtree.Build(
		[]layout.Node{layout.Field("/properties/address/properties/zip")},
		root, nil,
		fieldtree.WithDelimiter("__"),
		fieldtree.WithRegistry(registry),
	)
	require.NoError(t, err)
	assert.Equal(t, "address__zip", tree[0].ID)
	assert.Equal(t, "ZipCode", tree[0].Widget)
}

func TestFields_FlattensSections(t *testing.T) {
	root := parseSchema(t, grantSchema)
	tree, err := fieldtree.Build(grantLayout(), root, nil)
	require.NoError(t, err)

	var ids []string
	for _, field := range fieldtree.Fields(tree) {
		ids = append(ids, field.ID)
	}
	assert.Equal(t, []string{
		"project_title", "summary", "funding_type",
		"address--street", "address--zip",
		"is_delinquent", "budget", "placeholder",
	}, ids)
}

func TestForPrint(t *testing.T) {
	root := parseSchema(t, `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "upload": {"type": "string", "format": "uuid"}
  }
}`)
	nodes := []layout.Node{
		layout.Section("docs", "Documents", layout.Field("/properties/upload")),
		layout.Field("/properties/name"),
	}
	tree, err := fieldtree.Build(nodes, root, nil)
	require.NoError(t, err)
	require.Equal(t, widgets.WidgetAttachment, tree[0].Children[0].Widget)

	printed := fieldtree.ForPrint(tree)
	assert.Equal(t, widgets.WidgetPrintAttachment, printed[0].Children[0].Widget)
	assert.Equal(t, widgets.WidgetPrint, printed[1].Widget)
	assert.Equal(t, widgets.WidgetAttachment, tree[0].Children[0].Widget, "input tree is left untouched")
}
