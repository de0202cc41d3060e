package models

// NameSlug категория или жанр: название и уникальный слаг.
type NameSlug struct {
	ID   int64  `json:"-"`
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}
