package layout

// SectionAnchorPrefix prefixes the HTML id of a rendered section.
const SectionAnchorPrefix = "form-section-"

// NavItem is one entry of the side navigation.
type NavItem struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// SectionAnchor returns the anchor id for a section name.
func SectionAnchor(name string) string {
	return SectionAnchorPrefix + name
}

// NavItems lists named, labelled sections in order. Nested sections are only
// listed when every child of their parent is itself a named, labelled
// section.
func NavItems(nodes []Node) []NavItem {
	var items []NavItem
	for _, node := range nodes {
		if !node.IsSection() {
			continue
		}
		if node.Name != "" && node.Label != "" {
			items = append(items, NavItem{Href: SectionAnchor(node.Name), Text: node.Label})
		}
		if allNamedSections(node.Children) {
			items = append(items, NavItems(node.Children)...)
		}
	}
	return items
}

func allNamedSections(nodes []Node) bool {
	for _, node := range nodes {
		if !node.IsSection() || node.Name == "" || node.Label == "" {
			return false
		}
	}
	return true
}
