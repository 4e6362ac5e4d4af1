package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-applyform/pkg/fieldtree"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

// Fill walks the field tree in render order and prompts for every enabled
// field. Answers come back keyed by control id, ready for formdata.Shape.
// Current values are offered as defaults.
func Fill(ctx context.Context, driver Driver, nodes []fieldtree.Node) ([]formdata.Entry, error) {
	var entries []formdata.Entry
	if err := fill(ctx, driver, nodes, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func fill(ctx context.Context, driver Driver, nodes []fieldtree.Node, entries *[]formdata.Entry) error {
	for _, node := range nodes {
		if node.IsSection() {
			if heading := sectionHeading(node); heading != "" {
				if err := driver.Heading(ctx, heading); err != nil {
					return err
				}
			}
			if err := fill(ctx, driver, node.Children, entries); err != nil {
				return err
			}
			continue
		}
		if node.Disabled {
			continue
		}
		values, err := ask(ctx, driver, node)
		if err != nil {
			return fmt.Errorf("prompt: field %s: %w", node.ID, err)
		}
		for _, value := range values {
			*entries = append(*entries, formdata.Entry{Key: node.ID, Value: value})
		}
	}
	return nil
}

func ask(ctx context.Context, driver Driver, node fieldtree.Node) ([]string, error) {
	q := Question{
		Label:   label(node),
		Help:    node.Description,
		Default: display(node.Value),
	}

	switch node.Widget {
	case widgets.WidgetPrint, widgets.WidgetPrintAttachment:
		return nil, nil
	case widgets.WidgetCheckbox:
		answer, err := driver.Confirm(ctx, q)
		if err != nil {
			return nil, err
		}
		return []string{strconv.FormatBool(answer)}, nil
	case widgets.WidgetSelect, widgets.WidgetRadio:
		options := node.Options
		if node.EmptyLabel != "" {
			options = append([]fieldtree.Choice{{Label: node.EmptyLabel}}, options...)
		}
		q.Options = optionLabels(options)
		q.Default = labelFor(options, q.Default)
		answer, err := driver.Choose(ctx, q)
		if err != nil {
			return nil, err
		}
		return []string{valueFor(options, answer)}, nil
	case widgets.WidgetMultiSelect:
		q.Options = optionLabels(node.Options)
		if list, ok := node.Value.([]any); ok {
			for _, item := range list {
				if l := labelFor(node.Options, display(item)); l != "" {
					q.Defaults = append(q.Defaults, l)
				}
			}
		}
		picked, err := driver.ChooseMany(ctx, q)
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(picked))
		for _, answer := range picked {
			values = append(values, valueFor(node.Options, answer))
		}
		return values, nil
	case widgets.WidgetTextArea:
		q.Validate = lengthValidator(node)
		answer, err := driver.LongText(ctx, q)
		if err != nil {
			return nil, err
		}
		return []string{answer}, nil
	default:
		q.Validate = lengthValidator(node)
		answer, err := driver.Text(ctx, q)
		if err != nil {
			return nil, err
		}
		return []string{answer}, nil
	}
}

func label(node fieldtree.Node) string {
	title := node.Title
	if title == "" {
		title = node.Name
	}
	if node.Required {
		title += " *"
	}
	return title
}

func sectionHeading(node fieldtree.Node) string {
	if node.Label == "" {
		return ""
	}
	if node.Number != "" {
		return node.Number + ". " + node.Label
	}
	return node.Label
}

func lengthValidator(node fieldtree.Node) func(string) error {
	return func(answer string) error {
		length := utf8.RuneCountInString(answer)
		if node.Required && strings.TrimSpace(answer) == "" {
			return fmt.Errorf("%s is required", node.Title)
		}
		if node.MaxLength != nil && length > *node.MaxLength {
			return fmt.Errorf("at most %d characters", *node.MaxLength)
		}
		if node.MinLength != nil && length > 0 && length < *node.MinLength {
			return fmt.Errorf("at least %d characters", *node.MinLength)
		}
		return nil
	}
}

func optionLabels(options []fieldtree.Choice) []string {
	labels := make([]string, len(options))
	for i, option := range options {
		labels[i] = option.Label
	}
	return labels
}

func labelFor(options []fieldtree.Choice, value string) string {
	for _, option := range options {
		if option.Value == value {
			return option.Label
		}
	}
	return ""
}

func valueFor(options []fieldtree.Choice, label string) string {
	for _, option := range options {
		if option.Label == label {
			return option.Value
		}
	}
	return ""
}

func display(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
