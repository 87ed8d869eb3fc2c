package library

// Author is a writer known to the shelf. An author's book count is not
// stored; it is derived from the books that carry the author's name.
// Name is null for the author created by a book added without one.
type Author struct {
	ID   string  `yaml:"id" json:"id"`
	Name *string `yaml:"name" json:"name"`
	Born *int    `yaml:"born,omitempty" json:"born"`
}

// WithBorn returns a copy of the author with the birth year replaced.
// A nil born clears the birth year.
func (a *Author) WithBorn(born *int) *Author {
	updated := *a
	updated.Born = nil
	if born != nil {
		year := *born
		updated.Born = &year
	}
	return &updated
}
