package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/models"
)

func intPtr(v int) *int { return &v }

func failedFields(t *testing.T, err error) map[string]string {
	t.Helper()
	res := map[string]string{}
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "unexpected error type %T", err)
	for _, e := range verrs {
		res[e.Field()] = e.Tag()
	}
	return res
}

func TestSignupValidation(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		req   models.Signup
		field string
		tag   string
	}{
		{name: "valid", req: models.Signup{Username: "user.name+1@x-y", Email: "u@example.com"}},
		{name: "valid cyrillic", req: models.Signup{Username: "Иван", Email: "u@example.com"}},
		{name: "valid accented", req: models.Signup{Username: "josé.p", Email: "u@example.com"}},
		{name: "valid digits and underscore", req: models.Signup{Username: "user_42", Email: "u@example.com"}},
		{name: "reserved me", req: models.Signup{Username: "me", Email: "u@example.com"}, field: "username", tag: "notme"},
		{name: "reserved ME upper", req: models.Signup{Username: "ME", Email: "u@example.com"}, field: "username", tag: "notme"},
		{name: "bad chars", req: models.Signup{Username: "bad name!", Email: "u@example.com"}, field: "username", tag: "username"},
		{name: "cyrillic with space", req: models.Signup{Username: "Иван Петров", Email: "u@example.com"}, field: "username", tag: "username"},
		{name: "too long", req: models.Signup{Username: strings.Repeat("a", 151), Email: "u@example.com"}, field: "username", tag: "max"},
		{name: "missing email", req: models.Signup{Username: "user"}, field: "email", tag: "required"},
		{name: "bad email", req: models.Signup{Username: "user", Email: "not-an-email"}, field: "email", tag: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := failedFields(t, v.Struct(tt.req))
			if tt.field == "" {
				assert.Empty(t, fields)
				return
			}
			assert.Equal(t, tt.tag, fields[tt.field])
		})
	}
}

func TestNameSlugValidation(t *testing.T) {
	v := New()

	assert.Empty(t, failedFields(t, v.Struct(models.NameSlug{Name: "Книги", Slug: "books_1-a"})))
	assert.Equal(t, "slug", failedFields(t, v.Struct(models.NameSlug{Name: "x", Slug: "кни ги"}))["slug"])
	assert.Equal(t, "max", failedFields(t, v.Struct(models.NameSlug{Name: "x", Slug: strings.Repeat("s", 51)}))["slug"])
	assert.Equal(t, "max", failedFields(t, v.Struct(models.NameSlug{Name: strings.Repeat("n", 257), Slug: "s"}))["name"])
}

func TestTitleYearValidation(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })
	v := New()

	base := func(year *int) models.NewTitle {
		return models.NewTitle{Name: "Dune", Year: year, Genre: []string{"scifi"}, Category: "books"}
	}

	assert.Empty(t, failedFields(t, v.Struct(base(intPtr(1965)))))
	assert.Empty(t, failedFields(t, v.Struct(base(intPtr(2024)))))
	assert.Empty(t, failedFields(t, v.Struct(base(intPtr(0)))))
	assert.Equal(t, "pastyear", failedFields(t, v.Struct(base(intPtr(2025))))["year"])
	assert.Equal(t, "min", failedFields(t, v.Struct(base(intPtr(-1))))["year"])
	assert.Equal(t, "required", failedFields(t, v.Struct(base(nil)))["year"])
}

func TestTitleGenreValidation(t *testing.T) {
	v := New()
	year := intPtr(2000)

	empty := models.NewTitle{Name: "x", Year: year, Genre: []string{}, Category: "c"}
	assert.Equal(t, "min", failedFields(t, v.Struct(empty))["genre"])

	missing := models.NewTitle{Name: "x", Year: year, Category: "c"}
	assert.Equal(t, "required", failedFields(t, v.Struct(missing))["genre"])

	patch := models.TitlePatch{Genre: []string{}}
	assert.Equal(t, "min", failedFields(t, v.Struct(patch))["genre"])
	assert.Empty(t, failedFields(t, v.Struct(models.TitlePatch{})))
}

func TestReviewScoreValidation(t *testing.T) {
	v := New()

	for _, score := range []int{1, 5, 10} {
		assert.Empty(t, failedFields(t, v.Struct(models.ReviewInput{Text: "ok", Score: score})))
	}
	assert.Equal(t, "max", failedFields(t, v.Struct(models.ReviewInput{Text: "ok", Score: 11}))["score"])
	assert.Equal(t, "required", failedFields(t, v.Struct(models.ReviewInput{Text: "ok"}))["score"])

	eleven := 11
	assert.Equal(t, "max", failedFields(t, v.Struct(models.ReviewPatch{Score: &eleven}))["score"])
}

func TestUserPatchRoleValidation(t *testing.T) {
	v := New()
	role := "overlord"
	assert.Equal(t, "oneof", failedFields(t, v.Struct(models.UserPatch{Role: &role}))["role"])
	role = models.RoleModerator
	assert.Empty(t, failedFields(t, v.Struct(models.UserPatch{Role: &role})))
}
