package domain

// Person is a searchable record. Two people are the same if their names match.
type Person struct {
	FirstName string `toml:"first_name"`
	LastName  string `toml:"last_name"`
}

// FullName returns the display form "First Last"
func (p Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
