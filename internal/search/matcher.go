package search

import (
	"strings"
	"unicode/utf8"

	"peoplesearch/internal/domain"
)

// Matches reports whether query is a case-insensitive substring of one of the
// name forms of p: "FirstLast", "First Last", "{FL}" and "{F L}".
func Matches(p domain.Person, query string) bool {
	query = strings.ToLower(query)
	for _, candidate := range candidates(p) {
		if strings.Contains(strings.ToLower(candidate), query) {
			return true
		}
	}
	return false
}

func candidates(p domain.Person) [4]string {
	fi, li := initial(p.FirstName), initial(p.LastName)
	return [4]string{
		p.FirstName + p.LastName,
		p.FirstName + " " + p.LastName,
		"{" + fi + li + "}",
		"{" + fi + " " + li + "}",
	}
}

// initial returns the first rune of s, or "" for an empty name
func initial(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}

// IsBlank reports whether a query selects the whole dataset
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Filter returns the people matching query in their original order.
// A blank query returns a copy of people.
func Filter(people []domain.Person, query string) []domain.Person {
	result := make([]domain.Person, 0, len(people))
	if IsBlank(query) {
		return append(result, people...)
	}
	for _, p := range people {
		if Matches(p, query) {
			result = append(result, p)
		}
	}
	return result
}
