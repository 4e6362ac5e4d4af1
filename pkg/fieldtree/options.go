package fieldtree

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-applyform/pkg/schema"
	"github.com/goliatone/go-applyform/pkg/widgets"
)

var (
	policyOnce   sync.Once
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.RequireNoFollowOnLinks(true)
		ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return strictPolicy, ugcPolicy
}

// plainText strips all markup from labels and titles.
func plainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	strict, _ := policies()
	return html.UnescapeString(strings.TrimSpace(strict.Sanitize(trimmed)))
}

// richText keeps safe inline markup in descriptions, which often carry links
// to form instructions.
func richText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	_, ugc := policies()
	return strings.TrimSpace(ugc.Sanitize(trimmed))
}

// enumOptions lists the choices of option widgets. Booleans become a
// true/false pair labelled Yes/No; arrays use their item enum.
func enumOptions(widget string, node *schema.Node) ([]Choice, string) {
	if !widgets.UsesOptions(widget) || node == nil {
		return nil, ""
	}

	var values []any
	switch node.Kind {
	case schema.KindBoolean:
		values = []any{"true", "false"}
	case schema.KindArray:
		if items := node.Items.Effective(); items != nil {
			values = items.Enum
		}
	default:
		values = node.Enum
	}

	opts := make([]Choice, 0, len(values))
	for _, value := range values {
		str := optionValue(value)
		label := str
		if node.Kind == schema.KindBoolean {
			label = "No"
			if str == "true" {
				label = "Yes"
			}
		}
		opts = append(opts, Choice{Value: str, Label: label})
	}

	empty := ""
	if widget == widgets.WidgetSelect {
		empty = selectEmptyLabel
	}
	return opts, empty
}

func optionValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
