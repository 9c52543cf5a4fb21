package domain

type Category struct {
	Id          CategoryId   `json:"id"`
	Name        string       `json:"name"`
	Slug        CategorySlug `json:"slug"`
	Description string       `json:"description,omitempty"`
}
