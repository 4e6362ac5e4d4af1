package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/internal/prompt"
	"github.com/goliatone/go-applyform/pkg/formdata"
)

const grantSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "title": "Project Title"},
    "joint": {"type": "boolean", "title": "Joint application?"},
    "partner": {"type": "string", "title": "Partner"},
    "contact": {
      "type": "object",
      "properties": {"zip": {"type": "string", "title": "Zip"}}
    }
  },
  "allOf": [
    {"if": {"properties": {"joint": {"const": true}}, "required": ["joint"]}, "then": {"required": ["partner"]}},
    {"if": {"properties": {"joint": {"const": false}}, "required": ["joint"]}, "then": {"properties": {"partner": {"maxLength": 0}}}}
  ]
}`

const grantLayout = `[
  {"type": "section", "name": "project", "label": "Project", "children": [
    {"type": "field", "definition": "/properties/title"},
    {"type": "field", "definition": "/properties/joint"},
    {"type": "field", "definition": "/properties/partner"}
  ]},
  {"type": "field", "definition": "/properties/contact/properties/zip"}
]`

func formsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "grant.schema.json", grantSchema)
	writeFile(t, dir, "grant.layout.json", grantLayout)
	return dir
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	if a == nil {
		a = newApp()
	}
	cmd := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestExtract(t *testing.T) {
	dir := formsDir(t)
	out, _, err := run(t, nil, "extract", filepath.Join(dir, "grant.schema.json"))
	require.NoError(t, err)

	var got struct {
		Schema map[string]any   `json:"schema"`
		Rules  map[string][]any `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotContains(t, got.Schema, "allOf")
	assert.Len(t, got.Rules[""], 2)
}

func TestRender(t *testing.T) {
	dir := formsDir(t)
	data := writeFile(t, t.TempDir(), "data.json", `{"title": "Bridges", "contact": {"zip": "12345"}}`)

	out, _, err := run(t, nil, "--forms-dir", dir, "render", "grant", "--data", data)
	require.NoError(t, err)

	var got struct {
		Fields []struct {
			Kind     string `json:"kind"`
			ID       string `json:"id"`
			Value    any    `json:"value"`
			Widget   string `json:"widget"`
			Children []struct {
				ID    string `json:"id"`
				Value any    `json:"value"`
			} `json:"children"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "Bridges", got.Fields[0].Children[0].Value)
	assert.Equal(t, "contact--zip", got.Fields[1].ID)
	assert.Equal(t, "12345", got.Fields[1].Value)

	out, _, err = run(t, nil, "--forms-dir", dir, "render", "grant", "--print")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Print", got.Fields[1].Widget)

	_, _, err = run(t, nil, "--forms-dir", dir, "render", "missing")
	assert.ErrorContains(t, err, `form "missing" not found`)
}

func TestEncodeDecode(t *testing.T) {
	dir := formsDir(t)
	tmp := t.TempDir()
	data := writeFile(t, tmp, "data.json", `{"title": "Bridges", "joint": true, "contact": {"zip": "12345"}}`)

	out, _, err := run(t, nil, "encode", data)
	require.NoError(t, err)
	var entries []formdata.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Equal(t, []formdata.Entry{
		{Key: "contact--zip", Value: "12345"},
		{Key: "joint", Value: "true"},
		{Key: "title", Value: "Bridges"},
	}, entries)

	entriesFile := writeFile(t, tmp, "entries.json", out)
	out, _, err = run(t, nil, "--forms-dir", dir, "decode", "grant", entriesFile)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]any{
		"title":   "Bridges",
		"joint":   true,
		"contact": map[string]any{"zip": "12345"},
	}, decoded)

	out, _, err = run(t, nil, "--forms-dir", dir, "decode", "grant", entriesFile, "--validate")
	require.NoError(t, err)
	var sub struct {
		Warnings []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sub))
	require.NotEmpty(t, sub.Warnings)
	assert.Contains(t, out, "'partner' is a required property")
}

func TestEncode_CustomDelimiter(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", `{"contact": {"zip": "1"}}`)
	out, _, err := run(t, nil, "--delimiter", "__", "encode", data)
	require.NoError(t, err)
	assert.Contains(t, out, `"contact__zip"`)
}

type scriptedDriver struct {
	texts    []string
	confirms []bool
	headings []string
}

func (s *scriptedDriver) Heading(_ context.Context, text string) error {
	s.headings = append(s.headings, text)
	return nil
}

func (s *scriptedDriver) Text(context.Context, prompt.Question) (string, error) {
	val := s.texts[0]
	s.texts = s.texts[1:]
	return val, nil
}

func (s *scriptedDriver) LongText(context.Context, prompt.Question) (string, error) {
	return "", nil
}

func (s *scriptedDriver) Confirm(context.Context, prompt.Question) (bool, error) {
	val := s.confirms[0]
	s.confirms = s.confirms[1:]
	return val, nil
}

func (s *scriptedDriver) Choose(context.Context, prompt.Question) (string, error) {
	return "", nil
}

func (s *scriptedDriver) ChooseMany(context.Context, prompt.Question) ([]string, error) {
	return nil, nil
}

func TestFill(t *testing.T) {
	dir := formsDir(t)
	a := newApp()
	driver := &scriptedDriver{
		texts:    []string{"Bridges", "Acme", "12345"},
		confirms: []bool{true},
	}
	a.driver = driver

	out, _, err := run(t, a, "--forms-dir", dir, "fill", "grant")
	require.NoError(t, err)
	assert.Equal(t, []string{"Project"}, driver.headings)

	var got struct {
		Entries  []formdata.Entry `json:"entries"`
		Data     map[string]any   `json:"data"`
		Warnings []any            `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Entries, 4)
	assert.Equal(t, map[string]any{
		"title":   "Bridges",
		"joint":   true,
		"partner": "Acme",
		"contact": map[string]any{"zip": "12345"},
	}, got.Data)
	assert.Empty(t, got.Warnings)
}

func TestLint(t *testing.T) {
	dir := formsDir(t)
	_, _, err := run(t, nil, "--forms-dir", dir, "lint")
	require.NoError(t, err)

	bad := t.TempDir()
	writeFile(t, bad, "broken.schema.json", grantSchema)
	writeFile(t, bad, "broken.layout.json", `[{"type": "field", "definition": "/properties/nope"}]`)
	writeFile(t, bad, "arrays.schema.json", `{"type": "object", "properties": {"list": {"type": "array"}}}`)

	_, stderr, err := run(t, nil, "--forms-dir", bad, "lint")
	assert.ErrorContains(t, err, "2 problem(s) found")
	assert.Contains(t, stderr, "broken.layout.json: layout ->")
	assert.Contains(t, stderr, "arrays.schema.json")
}

func TestConfigFile(t *testing.T) {
	dir := formsDir(t)
	cfg := writeFile(t, t.TempDir(), "applyform.yaml", "forms_dir: "+dir+"\nlog:\n  level: warn\n")

	out, _, err := run(t, nil, "--config", cfg, "render", "grant")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "grant"`)

	_, _, err = run(t, nil, "--log-level", "loud", "encode", cfg)
	assert.ErrorContains(t, err, "invalid level")
}
