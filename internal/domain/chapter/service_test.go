package chapter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgl/internal/core/apperror"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
	"cgl/internal/domain/domaintest"
)

type memRepo struct {
	*domaintest.MemRepo[*Chapter]
}

func (r memRepo) SlugExists(_ context.Context, bookID id.ID, slug string, excludeID id.ID) (bool, error) {
	for _, c := range r.All() {
		if c.BookID == bookID && c.Slug == slug && c.ID != excludeID && !c.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

type bookSet map[id.ID]bool

func (b bookSet) Exists(_ context.Context, bookID id.ID) (bool, error) {
	return b[bookID], nil
}

type upperConverter struct{ err error }

func (c upperConverter) ConvertHTML(html string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	s := strings.ReplaceAll(html, "<p>", "")
	return strings.ReplaceAll(s, "</p>", "\n"), nil
}

type fixture struct {
	svc   *Service
	repo  memRepo
	pub   *domaintest.Publisher
	bookA id.ID
	bookB id.ID
}

func newFixture() *fixture {
	f := &fixture{
		repo:  memRepo{domaintest.NewMemRepo[*Chapter]()},
		pub:   &domaintest.Publisher{},
		bookA: id.New(),
		bookB: id.New(),
	}
	books := bookSet{f.bookA: true, f.bookB: true}
	f.svc = NewService(f.repo, books, domaintest.PassthroughTx{}, domaintest.NewScanAssigner(f.repo), f.pub, upperConverter{})
	return f
}

func TestCreate_NumbersPerBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var a, b []string
	for i := 0; i < 3; i++ {
		ca := NewChapter(f.bookA, "A chapter "+string(rune('a'+i)))
		require.NoError(t, f.svc.Create(ctx, ca, nil))
		a = append(a, ca.GetVisibleNumber().String())
	}
	cb := NewChapter(f.bookB, "B chapter")
	require.NoError(t, f.svc.Create(ctx, cb, nil))
	b = append(b, cb.GetVisibleNumber().String())

	assert.Equal(t, []string{"000.00", "005.00", "010.00"}, a)
	assert.Equal(t, []string{"000.00"}, b)

	last := f.pub.Events[len(f.pub.Events)-1]
	assert.Equal(t, domain.SubjectChapterCreated, last.Subject)
	assert.Equal(t, f.bookB.String(), last.Event.BookID)
	assert.Equal(t, "chapter", last.Event.Kind)
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture()
	c := &Chapter{BookID: f.bookA, Title: "Opening Words"}
	c.ID = id.New()
	require.NoError(t, f.svc.Create(context.Background(), c, nil))

	assert.Equal(t, "opening-words", c.Slug)
	assert.Equal(t, ContentMixed, c.ContentOption)
	assert.Equal(t, DisplayNormal, c.DisplayOption)
	assert.Equal(t, domain.StatusDraft, c.Status)
}

func TestCreate_UnknownBook(t *testing.T) {
	f := newFixture()
	err := f.svc.Create(context.Background(), NewChapter(id.New(), "Orphan"), nil)
	assert.True(t, apperror.IsNotFound(err))
	assert.Zero(t, f.repo.Creates)
}

func TestCreate_SlugUniquePerBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, NewChapter(f.bookA, "Preface"), nil))
	require.NoError(t, f.svc.Create(ctx, NewChapter(f.bookB, "Preface"), nil))

	err := f.svc.Create(ctx, NewChapter(f.bookA, "preface"), nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
}

func TestCreate_InvalidOptions(t *testing.T) {
	f := newFixture()
	c := NewChapter(f.bookA, "Options")
	c.DisplayOption = "SIDEBAR"
	err := f.svc.Create(context.Background(), c, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreate_ConcurrentInSameBook(t *testing.T) {
	f := newFixture()
	const writers = 8

	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewChapter(f.bookA, "Parallel "+string(rune('a'+i)))
			errs[i] = f.svc.Create(context.Background(), c, nil)
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, c := range f.repo.All() {
		seen[c.GetVisibleNumber().String()] = true
	}
	for _, err := range errs {
		if err != nil {
			// Only exhausted retries may surface, and only as a conflict.
			assert.True(t, apperror.IsNumberConflict(err), "unexpected error %v", err)
		}
	}
	assert.Len(t, seen, len(f.repo.All()), "numbers must be unique")
}

func TestGetInBook_WrongBook(t *testing.T) {
	f := newFixture()
	c := NewChapter(f.bookA, "Mine")
	require.NoError(t, f.svc.Create(context.Background(), c, nil))

	_, err := f.svc.GetInBook(context.Background(), f.bookB, c.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := f.svc.GetInBook(context.Background(), f.bookA, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestListByBook_Range(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		require.NoError(t, f.svc.Create(ctx, NewChapter(f.bookA, "Chapter "+string(rune('a'+i))), nil))
	}
	require.NoError(t, f.svc.Create(ctx, NewChapter(f.bookB, "Elsewhere"), nil))

	filter := domain.DefaultListFilter()
	filter.Range = numbering.NewRange(numbering.MustNew(5, 0), numbering.MustNew(20, 0))
	res, err := f.svc.ListByBook(ctx, f.bookA, filter)
	require.NoError(t, err)

	var got []string
	for _, c := range res.Items {
		got = append(got, c.GetVisibleNumber().String())
	}
	assert.Equal(t, []string{"005.00", "010.00", "015.00", "020.00"}, got)

	_, err = f.svc.ListByBook(ctx, id.New(), domain.DefaultListFilter())
	assert.True(t, apperror.IsNotFound(err))
}

func TestModifyAndRemove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := NewChapter(f.bookA, "Before")
	require.NoError(t, f.svc.Create(ctx, c, nil))

	hidden := DisplayHidden
	show := false
	got, err := f.svc.Modify(ctx, f.bookA, c.ID, Update{DisplayOption: &hidden, ShowInContents: &show})
	require.NoError(t, err)
	assert.Equal(t, DisplayHidden, got.DisplayOption)
	assert.False(t, got.ShowInContents)
	assert.Equal(t, "Before", got.Title)

	_, err = f.svc.Modify(ctx, f.bookB, c.ID, Update{DisplayOption: &hidden})
	assert.True(t, apperror.IsNotFound(err))

	assert.True(t, apperror.IsNotFound(f.svc.Remove(ctx, f.bookB, c.ID)))
	require.NoError(t, f.svc.Remove(ctx, f.bookA, c.ID))
	_, err = f.svc.GetInBook(ctx, f.bookA, c.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestExportMarkdown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c := NewChapter(f.bookA, "First Light")
	c.Header = "Part One"
	c.Intro = "Where it starts."
	c.ContentHTML = "<p>Body text</p>"
	c.Notes = "Draft notes"
	require.NoError(t, f.svc.Create(ctx, c, nil))

	md, err := f.svc.ExportMarkdown(ctx, f.bookA, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "# 000.00 First Light\n\n_Part One_\n\nWhere it starts.\n\nBody text\n\n---\n\nDraft notes\n", md)
}

func TestExportMarkdown_ConverterError(t *testing.T) {
	f := newFixture()
	f.svc.converter = upperConverter{err: errors.New("bad html")}
	c := NewChapter(f.bookA, "Broken")
	c.ContentHTML = "<p>x</p>"
	require.NoError(t, f.svc.Create(context.Background(), c, nil))

	_, err := f.svc.ExportMarkdown(context.Background(), f.bookA, c.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInternal))
}
