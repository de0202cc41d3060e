package models

// Title произведение в представлении для чтения.
// Rating среднее по оценкам отзывов, nil если отзывов нет.
type Title struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Year        int        `json:"year"`
	Rating      *float64   `json:"rating"`
	Description string     `json:"description"`
	Genre       []NameSlug `json:"genre"`
	Category    *NameSlug  `json:"category"`
}

// NewTitle данные для создания произведения. Жанры и категория задаются слагами.
type NewTitle struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        *int     `json:"year" validate:"required,min=0,pastyear"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,required"`
	Category    string   `json:"category" validate:"required"`
}

// TitlePatch частичное изменение произведения.
type TitlePatch struct {
	Name        *string  `json:"name" validate:"omitempty,max=256"`
	Year        *int     `json:"year" validate:"omitempty,min=0,pastyear"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" validate:"omitempty,min=1,dive,required"`
	Category    *string  `json:"category" validate:"omitempty,min=1"`
}

// TitleFilter параметры фильтрации списка произведений.
type TitleFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
}
