// Package people provides the dataset searched by the app: a built-in seed
// and an optional TOML file that is reloaded when it changes.
package people

import "peoplesearch/internal/domain"

// Seed returns the built-in dataset. Each call returns a fresh slice.
func Seed() []domain.Person {
	return []domain.Person{
		{FirstName: "Mark", LastName: "Ndaru"},
		{FirstName: "Darius", LastName: "Nyaga"},
		{FirstName: "Anthony", LastName: "Mwalili"},
		{FirstName: "Steve", LastName: "Magu"},
	}
}
