package views

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"peoplesearch/internal/domain"
)

// ResultsRenderer renders the result list shown in the scrollable area
type ResultsRenderer struct {
	styles *Styles
}

// NewResultsRenderer creates a new results renderer
func NewResultsRenderer(styles *Styles) *ResultsRenderer {
	return &ResultsRenderer{styles: styles}
}

// Render draws one line per person. query is highlighted where it appears
// in the display name.
func (r *ResultsRenderer) Render(people []domain.Person, query string) string {
	if len(people) == 0 {
		return r.styles.Empty.Render("  No people match your search.")
	}

	var b strings.Builder
	for i, p := range people {
		if i > 0 {
			b.WriteString("\n")
		}
		badge := r.styles.Initials.Render(fmt.Sprintf("%-6s", Initials(p)))
		b.WriteString("  ")
		b.WriteString(badge)
		b.WriteString(r.highlight(p.FullName(), query))
	}
	return b.String()
}

// Plain renders people without styling, one per line, for the pager
func (r *ResultsRenderer) Plain(people []domain.Person) string {
	var b strings.Builder
	for _, p := range people {
		fmt.Fprintf(&b, "%-6s%s\n", Initials(p), p.FullName())
	}
	return b.String()
}

// highlight styles the first case-insensitive occurrence of query in name
func (r *ResultsRenderer) highlight(name, query string) string {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(name)
	// Byte offsets are only safe when lowering kept the length
	if query == "" || len(lower) != len(name) {
		return r.styles.Name.Render(name)
	}
	i := strings.Index(lower, strings.ToLower(query))
	if i < 0 || len(strings.ToLower(query)) != len(query) {
		return r.styles.Name.Render(name)
	}
	j := i + len(query)
	return r.styles.Name.Render(name[:i]) +
		r.styles.Highlight.Render(name[i:j]) +
		r.styles.Name.Render(name[j:])
}

// Initials returns the "{FL}" badge for p
func Initials(p domain.Person) string {
	return "{" + firstRune(p.FirstName) + firstRune(p.LastName) + "}"
}

func firstRune(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
