package models

// Page параметры запрошенной страницы. Number начинается с 1.
type Page struct {
	Number int
	Size   int
}

// Limit возвращает LIMIT для SQL.
func (p Page) Limit() int { return p.Size }

// Offset возвращает OFFSET для SQL.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// PageResult одна страница выборки и общее число записей.
type PageResult[T any] struct {
	Items []T
	Count int
}
