package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/migrations"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/testinfra"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := testinfra.Postgres(t)

	storage, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, migrations.Run(storage.DB, testinfra.MigrationsPath(t)))
	return storage
}

// TestDataFactory создаёт тестовые данные поверх Storage.
type TestDataFactory struct {
	s *Storage
}

func (f *TestDataFactory) User(t *testing.T, username, role string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Role: role}
	id, err := f.s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.ID = id
	return u
}

func (f *TestDataFactory) NameSlug(t *testing.T, c Catalog, slug string) models.NameSlug {
	t.Helper()
	item, err := f.s.CreateNameSlug(context.Background(), c, models.NameSlug{Name: slug, Slug: slug})
	require.NoError(t, err)
	return item
}

func (f *TestDataFactory) Title(t *testing.T, name string, year int, category string, genres ...string) int64 {
	t.Helper()
	id, err := f.s.CreateTitle(context.Background(), models.NewTitle{
		Name: name, Year: &year, Genre: genres, Category: category,
	})
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) Review(t *testing.T, titleID int64, author models.User, score int) models.Review {
	t.Helper()
	r, err := f.s.CreateReview(context.Background(), models.Review{
		TitleID: titleID, AuthorID: author.ID, Text: "text", Score: score,
	})
	require.NoError(t, err)
	return *r
}

func firstPage() models.Page { return models.Page{Number: 1, Size: 10} }

func TestStorage_Users(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	alice := f.User(t, "alice", models.RoleUser)

	_, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "other@example.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.CreateUser(ctx, models.User{Username: "alice2", Email: "alice@example.com", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Nil(t, got.ConfirmationCode)

	hash := "hashed"
	require.NoError(t, s.SetConfirmationCode(ctx, alice.ID, &hash))
	got, err = s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.ConfirmationCode)
	assert.Equal(t, hash, *got.ConfirmationCode)

	assert.ErrorIs(t, s.ConsumeConfirmationCode(ctx, alice.ID, "other"), ErrNotFound)
	require.NoError(t, s.ConsumeConfirmationCode(ctx, alice.ID, hash))
	assert.ErrorIs(t, s.ConsumeConfirmationCode(ctx, alice.ID, hash), ErrNotFound)
	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got.ConfirmationCode)
	require.NoError(t, s.SetConfirmationCode(ctx, alice.ID, &hash))

	got.Bio = "reader"
	got.Role = models.RoleModerator
	require.NoError(t, s.UpdateUser(ctx, *got))
	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "reader", got.Bio)
	assert.Equal(t, models.RoleModerator, got.Role)

	f.User(t, "bob", models.RoleUser)
	list, err := s.ListUsers(ctx, "LIC", firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "alice", list.Items[0].Username)

	require.NoError(t, s.DeleteUser(ctx, "alice"))
	_, err = s.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, "alice"), ErrNotFound)
}

func TestStorage_Catalog(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Categories, "films")

	_, err := s.CreateNameSlug(ctx, Categories, models.NameSlug{Name: "dup", Slug: "books"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	// Слаг уникален в пределах справочника.
	_, err = s.CreateNameSlug(ctx, Genres, models.NameSlug{Name: "books", Slug: "books"})
	assert.NoError(t, err)

	list, err := s.ListNameSlugs(ctx, Categories, "fil", firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "films", list.Items[0].Slug)

	require.NoError(t, s.DeleteNameSlug(ctx, Categories, "films"))
	assert.ErrorIs(t, s.DeleteNameSlug(ctx, Categories, "films"), ErrNotFound)
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		search string
		want   string
	}{
		{search: "abc", want: `%abc%`},
		{search: "50%", want: `%50\%%`},
		{search: "a_b", want: `%a\_b%`},
		{search: `c:\dir`, want: `%c:\\dir%`},
		{search: "", want: `%%`},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.search))
		})
	}
}

func TestStorage_SearchWildcardsAreLiteral(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Genres, "a_b")
	f.NameSlug(t, Genres, "axb")
	f.User(t, "under_score", models.RoleUser)
	f.User(t, "plain", models.RoleUser)

	genres, err := s.ListNameSlugs(ctx, Genres, "_", firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, genres.Count)
	assert.Equal(t, "a_b", genres.Items[0].Slug)

	genres, err = s.ListNameSlugs(ctx, Genres, "%", firstPage())
	require.NoError(t, err)
	assert.Equal(t, 0, genres.Count)

	users, err := s.ListUsers(ctx, "_", firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, users.Count)
	assert.Equal(t, "under_score", users.Items[0].Username)

	f.NameSlug(t, Categories, "films")
	f.Title(t, "50% off", 2000, "films", "a_b")
	f.Title(t, "500 days", 2009, "films", "axb")

	titles, err := s.ListTitles(ctx, models.TitleFilter{Name: "50%"}, firstPage())
	require.NoError(t, err)
	assert.Equal(t, 1, titles.Count)
	assert.Equal(t, "50% off", titles.Items[0].Name)
}

func TestStorage_TitleRatingIsMeanOfScores(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	id := f.Title(t, "Dune", 1965, "books", "scifi")

	title, err := s.GetTitle(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, title.Rating, "no reviews means no rating")
	require.NotNil(t, title.Category)
	assert.Equal(t, "books", title.Category.Slug)
	require.Len(t, title.Genre, 1)
	assert.Equal(t, "scifi", title.Genre[0].Slug)

	f.Review(t, id, f.User(t, "u1", models.RoleUser), 10)
	f.Review(t, id, f.User(t, "u2", models.RoleUser), 7)
	f.Review(t, id, f.User(t, "u3", models.RoleUser), 4)

	title, err = s.GetTitle(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, title.Rating)
	assert.InDelta(t, 7.0, *title.Rating, 0.0001)
}

func TestStorage_ReviewUniquePerAuthor(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	id := f.Title(t, "Dune", 1965, "books", "scifi")
	author := f.User(t, "author", models.RoleUser)

	f.Review(t, id, author, 8)
	_, err := s.CreateReview(ctx, models.Review{TitleID: id, AuthorID: author.ID, Text: "again", Score: 9})
	assert.ErrorIs(t, err, ErrReviewExists)

	_, err = s.CreateReview(ctx, models.Review{TitleID: id + 100, AuthorID: author.ID, Text: "x", Score: 9})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_DeleteCategoryKeepsTitle(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	f.NameSlug(t, Genres, "drama")
	id := f.Title(t, "Dune", 1965, "books", "scifi", "drama")

	require.NoError(t, s.DeleteNameSlug(ctx, Categories, "books"))
	require.NoError(t, s.DeleteNameSlug(ctx, Genres, "drama"))

	title, err := s.GetTitle(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, title.Category)
	require.Len(t, title.Genre, 1)
	assert.Equal(t, "scifi", title.Genre[0].Slug)
}

func TestStorage_DeleteTitleCascades(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	id := f.Title(t, "Dune", 1965, "books", "scifi")
	author := f.User(t, "author", models.RoleUser)
	review := f.Review(t, id, author, 8)
	_, err := s.CreateComment(ctx, models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "c"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTitle(ctx, id))

	var reviews, comments int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM reviews`).Scan(&reviews))
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&comments))
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}

func TestStorage_TitleCreateUnknownSlug(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	year := 2000

	_, err := s.CreateTitle(ctx, models.NewTitle{Name: "x", Year: &year, Genre: []string{"scifi", "nope"}, Category: "books"})
	var slugErr *SlugNotFoundError
	require.ErrorAs(t, err, &slugErr)
	assert.Equal(t, "genre", slugErr.Field)
	assert.Equal(t, "nope", slugErr.Slug)

	_, err = s.CreateTitle(ctx, models.NewTitle{Name: "x", Year: &year, Genre: []string{"scifi"}, Category: "nope"})
	require.ErrorAs(t, err, &slugErr)
	assert.Equal(t, "category", slugErr.Field)

	var titles int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM titles`).Scan(&titles))
	assert.Zero(t, titles, "failed create must not leave a title behind")
}

func TestStorage_ListTitlesFilters(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Categories, "films")
	f.NameSlug(t, Genres, "scifi")
	f.NameSlug(t, Genres, "drama")
	f.Title(t, "Dune", 1965, "books", "scifi")
	f.Title(t, "Dune", 2021, "films", "scifi", "drama")
	f.Title(t, "Anna Karenina", 1878, "books", "drama")

	year := 2021
	tests := []struct {
		name   string
		filter models.TitleFilter
		want   int
	}{
		{name: "no filter", filter: models.TitleFilter{}, want: 3},
		{name: "name substring", filter: models.TitleFilter{Name: "dun"}, want: 2},
		{name: "year", filter: models.TitleFilter{Year: &year}, want: 1},
		{name: "category", filter: models.TitleFilter{Category: "books"}, want: 2},
		{name: "genre", filter: models.TitleFilter{Genre: "drama"}, want: 2},
		{name: "combined", filter: models.TitleFilter{Genre: "scifi", Category: "books"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ListTitles(ctx, tt.filter, firstPage())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Count)
			assert.Len(t, res.Items, tt.want)
		})
	}

	res, err := s.ListTitles(ctx, models.TitleFilter{}, firstPage())
	require.NoError(t, err)
	assert.Equal(t, "Anna Karenina", res.Items[0].Name, "titles are ordered by name")
	assert.Len(t, res.Items[2].Genre, 2)
}

func TestStorage_UpdateTitle(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Categories, "films")
	f.NameSlug(t, Genres, "scifi")
	f.NameSlug(t, Genres, "drama")
	id := f.Title(t, "Dune", 1965, "books", "scifi")

	name := "Dune Messiah"
	films := "films"
	require.NoError(t, s.UpdateTitle(ctx, id, models.TitlePatch{
		Name: &name, Category: &films, Genre: []string{"drama"},
	}))

	title, err := s.GetTitle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", title.Name)
	assert.Equal(t, 1965, title.Year)
	assert.Equal(t, "films", title.Category.Slug)
	require.Len(t, title.Genre, 1)
	assert.Equal(t, "drama", title.Genre[0].Slug)

	assert.ErrorIs(t, s.UpdateTitle(ctx, id+100, models.TitlePatch{Name: &name}), ErrNotFound)
}

func TestStorage_ReviewsAndComments(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	f := &TestDataFactory{s: s}

	f.NameSlug(t, Categories, "books")
	f.NameSlug(t, Genres, "scifi")
	dune := f.Title(t, "Dune", 1965, "books", "scifi")
	other := f.Title(t, "Other", 1999, "books", "scifi")
	author := f.User(t, "author", models.RoleUser)
	review := f.Review(t, dune, author, 8)

	got, err := s.GetReview(ctx, dune, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", got.Author)

	_, err = s.GetReview(ctx, other, review.ID)
	assert.ErrorIs(t, err, ErrNotFound, "review must belong to the title in the path")

	got.Score = 3
	require.NoError(t, s.UpdateReview(ctx, *got))

	comment, err := s.CreateComment(ctx, models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "first"})
	require.NoError(t, err)
	comment.Text = "edited"
	require.NoError(t, s.UpdateComment(ctx, *comment))

	comments, err := s.ListComments(ctx, review.ID, firstPage())
	require.NoError(t, err)
	require.Equal(t, 1, comments.Count)
	assert.Equal(t, "edited", comments.Items[0].Text)
	assert.Equal(t, "author", comments.Items[0].Author)

	require.NoError(t, s.DeleteComment(ctx, review.ID, comment.ID))
	_, err = s.GetComment(ctx, review.ID, comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	reviews, err := s.ListReviews(ctx, dune, firstPage())
	require.NoError(t, err)
	require.Equal(t, 1, reviews.Count)
	assert.Equal(t, 3, reviews.Items[0].Score)

	require.NoError(t, s.DeleteReview(ctx, dune, review.ID))
	assert.ErrorIs(t, s.DeleteReview(ctx, dune, review.ID), ErrNotFound)
}
