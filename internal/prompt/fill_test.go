package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-applyform/pkg/fieldtree"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

type stubDriver struct {
	texts     []string
	longTexts []string
	confirms  []bool
	choices   []string
	multis    [][]string
	headings  []string
	questions []Question
}

func pop[T any](queue *[]T, kind string) (T, error) {
	var zero T
	if len(*queue) == 0 {
		return zero, errors.New("no " + kind + " scripted")
	}
	val := (*queue)[0]
	*queue = (*queue)[1:]
	return val, nil
}

func (s *stubDriver) Heading(_ context.Context, text string) error {
	s.headings = append(s.headings, text)
	return nil
}

func (s *stubDriver) Text(_ context.Context, q Question) (string, error) {
	s.questions = append(s.questions, q)
	return pop(&s.texts, "text")
}

func (s *stubDriver) LongText(_ context.Context, q Question) (string, error) {
	s.questions = append(s.questions, q)
	return pop(&s.longTexts, "long text")
}

func (s *stubDriver) Confirm(_ context.Context, q Question) (bool, error) {
	s.questions = append(s.questions, q)
	return pop(&s.confirms, "confirm")
}

func (s *stubDriver) Choose(_ context.Context, q Question) (string, error) {
	s.questions = append(s.questions, q)
	return pop(&s.choices, "choice")
}

func (s *stubDriver) ChooseMany(_ context.Context, q Question) ([]string, error) {
	s.questions = append(s.questions, q)
	return pop(&s.multis, "multi choice")
}

func intPtr(v int) *int { return &v }

func TestFill(t *testing.T) {
	nodes := []fieldtree.Node{
		{
			Kind:   fieldtree.KindSection,
			Label:  "Applicant",
			Number: "1",
			Children: []fieldtree.Node{
				{Kind: fieldtree.KindField, ID: "applicant--name", Title: "Name", Widget: widgets.WidgetText, Required: true},
				{Kind: fieldtree.KindField, ID: "applicant--bio", Title: "Bio", Widget: widgets.WidgetTextArea},
			},
		},
		{Kind: fieldtree.KindField, ID: "delinquent", Title: "Delinquent", Widget: widgets.WidgetCheckbox},
		{
			Kind: fieldtree.KindField, ID: "funding", Title: "Funding", Widget: widgets.WidgetSelect,
			EmptyLabel: "- Select -",
			Options:    []fieldtree.Choice{{Value: "Grant", Label: "Grant"}, {Value: "Loan", Label: "Loan"}},
		},
		{
			Kind: fieldtree.KindField, ID: "tags", Title: "Tags", Widget: widgets.WidgetMultiSelect,
			Options: []fieldtree.Choice{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"}},
		},
		{Kind: fieldtree.KindField, ID: "placeholder", Disabled: true},
	}
	driver := &stubDriver{
		texts:     []string{"Ada"},
		longTexts: []string{"Engineer"},
		confirms:  []bool{false},
		choices:   []string{"Loan"},
		multis:    [][]string{{"A", "C"}},
	}

	entries, err := Fill(context.Background(), driver, nodes)
	require.NoError(t, err)
	assert.Equal(t, []formdata.Entry{
		{Key: "applicant--name", Value: "Ada"},
		{Key: "applicant--bio", Value: "Engineer"},
		{Key: "delinquent", Value: "false"},
		{Key: "funding", Value: "Loan"},
		{Key: "tags", Value: "a"},
		{Key: "tags", Value: "c"},
	}, entries)
	assert.Equal(t, []string{"1. Applicant"}, driver.headings)
	require.Len(t, driver.questions, 5)
	assert.Equal(t, "Name *", driver.questions[0].Label)
	assert.NotNil(t, driver.questions[0].Validate)
	assert.Equal(t, []string{"- Select -", "Grant", "Loan"}, driver.questions[3].Options)
	assert.Equal(t, "- Select -", driver.questions[3].Default)
	assert.Equal(t, []string{"A", "B", "C"}, driver.questions[4].Options)
}

func TestFill_Defaults(t *testing.T) {
	nodes := []fieldtree.Node{
		{Kind: fieldtree.KindField, ID: "budget", Title: "Budget", Widget: widgets.WidgetText, Value: int64(12)},
		{
			Kind: fieldtree.KindField, ID: "partner", Title: "Partner", Widget: widgets.WidgetRadio,
			Value:   true,
			Options: []fieldtree.Choice{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}},
		},
	}
	driver := &stubDriver{texts: []string{"12"}, choices: []string{"Yes"}}

	entries, err := Fill(context.Background(), driver, nodes)
	require.NoError(t, err)
	require.Len(t, driver.questions, 2)
	assert.Equal(t, "12", driver.questions[0].Default)
	assert.Equal(t, "Yes", driver.questions[1].Default)
	assert.Equal(t, []formdata.Entry{{Key: "budget", Value: "12"}, {Key: "partner", Value: "true"}}, entries)
}

func TestFill_DriverError(t *testing.T) {
	nodes := []fieldtree.Node{{Kind: fieldtree.KindField, ID: "name", Widget: widgets.WidgetText}}
	_, err := Fill(context.Background(), &stubDriver{}, nodes)
	assert.ErrorContains(t, err, "prompt: field name")
}

func TestLengthValidator(t *testing.T) {
	validate := lengthValidator(fieldtree.Node{Title: "Zip", Required: true, MinLength: intPtr(5), MaxLength: intPtr(10)})

	assert.ErrorContains(t, validate(" "), "Zip is required")
	assert.ErrorContains(t, validate("123"), "at least 5")
	assert.ErrorContains(t, validate("12345678901"), "at most 10")
	assert.NoError(t, validate("12345"))
}

func TestOptionLookup(t *testing.T) {
	options := []fieldtree.Choice{{Value: "g", Label: "Grant"}, {Value: "l", Label: "Loan"}}
	assert.Equal(t, "Loan", labelFor(options, "l"))
	assert.Equal(t, "", labelFor(options, "x"))
	assert.Equal(t, "g", valueFor(options, "Grant"))
	assert.Equal(t, "", valueFor(options, "- Select -"))
}
