// Package openalex fetches scholarly-work metadata from the OpenAlex API and
// extracts co-occurrence records from it.
package openalex

// Work is the subset of an OpenAlex work used here.
type Work struct {
	ID              string       `json:"id"` // https://openalex.org/W...
	DOI             string       `json:"doi,omitempty"`
	DisplayName     string       `json:"display_name"`
	PublicationYear int          `json:"publication_year,omitempty"`
	Authorships     []Authorship `json:"authorships"`
	ReferencedWorks []string     `json:"referenced_works"`
}

// Authorship links a work to one author.
type Authorship struct {
	AuthorPosition string        `json:"author_position,omitempty"`
	Author         Author        `json:"author"`
	Institutions   []Institution `json:"institutions,omitempty"`
}

// Author is the dehydrated author object embedded in an authorship.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Institution is the dehydrated institution object embedded in an authorship.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Meta is the paging metadata of a list response.
type Meta struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// WorksPage is a single page of a /works list response.
type WorksPage struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}
