package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Styled output detects a light or dark background; otherwise the
// plain "notty" style is used.
func NewRenderer(styled bool) (func(string) (string, error), error) {
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(0))
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// HashTable renders the fields of a hash as a markdown table sorted by field.
func HashTable(key string, props map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", key)

	if len(props) == 0 {
		b.WriteString("_empty or missing_\n")
		return b.String()
	}

	fields := make([]string, 0, len(props))
	for f := range props {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	b.WriteString("| field | value |\n|---|---|\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(f), escapeCell(props[f]))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
