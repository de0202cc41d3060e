package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/yamdb/internal/config"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/storage"
)

// ErrInvalidPage запрошенная страница не существует.
var ErrInvalidPage = errors.New("invalid page")

// Page страница списка.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// ParsePage читает page и page_size из запроса. page_size ограничен сверху MaxPageSize.
func ParsePage(r *http.Request, cfg config.Pagination) (models.Page, error) {
	p := models.Page{Number: 1, Size: cfg.PageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, ErrInvalidPage
		}
		p.Number = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			p.Size = min(n, cfg.MaxPageSize)
		}
	}
	return p, nil
}

// NewPage собирает страницу со ссылками на соседние страницы.
// Страница за пределами выборки, кроме первой, даёт ErrInvalidPage.
func NewPage[T any](r *http.Request, page models.Page, res models.PageResult[T]) (Page[T], error) {
	if page.Number > 1 && page.Offset() >= res.Count {
		return Page[T]{}, ErrInvalidPage
	}
	out := Page[T]{Count: res.Count, Results: res.Items}
	if out.Results == nil {
		out.Results = []T{}
	}
	if page.Offset()+len(res.Items) < res.Count {
		out.Next = pageURL(r, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageURL(r, page.Number-1)
	}
	return out, nil
}

func pageURL(r *http.Request, number int) *string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	q := r.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// PathID читает числовой идентификатор из пути. Нечисловое значение
// означает несуществующий объект.
func PathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s=%q: %w", key, chi.URLParam(r, key), storage.ErrNotFound)
	}
	return id, nil
}
