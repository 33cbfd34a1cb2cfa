package record

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgl/internal/core/apperror"
	"cgl/internal/core/entity"
	"cgl/internal/core/id"
	"cgl/internal/core/numbering"
	"cgl/internal/domain"
	"cgl/internal/domain/chapter"
	"cgl/internal/domain/domaintest"
)

type bookSet map[id.ID]bool

func (b bookSet) Exists(_ context.Context, bookID id.ID) (bool, error) {
	return b[bookID], nil
}

type chapterMap map[id.ID]*chapter.Chapter

func (m chapterMap) GetByID(_ context.Context, chapterID id.ID) (*chapter.Chapter, error) {
	c, ok := m[chapterID]
	if !ok {
		return nil, apperror.NewNotFound("chapter", chapterID.String())
	}
	return c, nil
}

type fixture struct {
	svc      *Service
	repo     *domaintest.MemRepo[*Record]
	pub      *domaintest.Publisher
	book     id.ID
	other    id.ID
	chapter  *chapter.Chapter
	foreignC *chapter.Chapter
}

func newFixture() *fixture {
	f := &fixture{
		repo:  domaintest.NewMemRepo[*Record](),
		pub:   &domaintest.Publisher{},
		book:  id.New(),
		other: id.New(),
	}
	f.chapter = chapter.NewChapter(f.book, "Here")
	f.foreignC = chapter.NewChapter(f.other, "There")
	chapters := chapterMap{f.chapter.ID: f.chapter, f.foreignC.ID: f.foreignC}
	f.svc = NewService(f.repo, bookSet{f.book: true, f.other: true}, chapters,
		domaintest.PassthroughTx{}, domaintest.NewScanAssigner(f.repo), f.pub)
	return f
}

func TestCreate_StepsByTen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var got []string
	var keys []int64
	for _i := 0; _i < 4; _i++ {
		r := NewRecord(f.book, "entry")
		require.NoError(t, f.svc.Create(ctx, r, nil))
		got = append(got, r.GetVisibleNumber().String())
		keys = append(keys, r.RecordKey())
	}
	assert.Equal(t, []string{"000.00", "010.00", "020.00", "030.00"}, got)
	assert.Equal(t, []int64{0, 1000, 2000, 3000}, keys)

	assert.Equal(t, domain.SubjectRecordCreated, f.pub.Events[0].Subject)
	assert.Equal(t, "record", f.pub.Events[0].Event.Kind)
}

func TestCreate_ManualInsertBetween(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.Create(ctx, NewRecord(f.book, "first"), nil))
	require.NoError(t, f.svc.Create(ctx, NewRecord(f.book, "second"), nil))

	between := NewRecord(f.book, "between")
	n := numbering.MustNew(5, 50)
	require.NoError(t, f.svc.Create(ctx, between, &n))
	assert.EqualValues(t, 550, between.RecordKey())

	res, err := f.svc.ListByBook(ctx, f.book, domain.DefaultListFilter())
	require.NoError(t, err)
	var contents []string
	for _, r := range res.Items {
		contents = append(contents, r.Content)
	}
	assert.Equal(t, []string{"first", "between", "second"}, contents)
}

func TestCreate_ChapterLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	linked := NewRecord(f.book, "linked")
	linked.ChapterID = &f.chapter.ID
	require.NoError(t, f.svc.Create(ctx, linked, nil))

	foreign := NewRecord(f.book, "foreign")
	foreign.ChapterID = &f.foreignC.ID
	err := f.svc.Create(ctx, foreign, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	missing := NewRecord(f.book, "missing")
	ghost := id.New()
	missing.ChapterID = &ghost
	err = f.svc.Create(ctx, missing, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreate_UnknownBook(t *testing.T) {
	f := newFixture()
	err := f.svc.Create(context.Background(), NewRecord(id.New(), "x"), nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListByBook_ChapterAndRange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		r := NewRecord(f.book, "r")
		if i%2 == 0 {
			r.ChapterID = &f.chapter.ID
		}
		require.NoError(t, f.svc.Create(ctx, r, nil))
	}
	require.NoError(t, f.svc.Create(ctx, NewRecord(f.other, "other book"), nil))

	filter := domain.DefaultListFilter()
	filter.ChapterID = &f.chapter.ID
	filter.Range = numbering.NewRange(numbering.MustNew(10, 0), numbering.MustNew(50, 0))
	res, err := f.svc.ListByBook(ctx, f.book, filter)
	require.NoError(t, err)

	var got []string
	for _, r := range res.Items {
		got = append(got, r.GetVisibleNumber().String())
	}
	assert.Equal(t, []string{"020.00", "040.00"}, got)
}

func TestModify_MergesMeta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r := NewRecord(f.book, "text")
	r.Meta = entity.Attributes{"tag": "alpha", "flag": true}
	require.NoError(t, f.svc.Create(ctx, r, nil))

	content := "edited"
	got, err := f.svc.Modify(ctx, f.book, r.ID, Update{
		Content: &content,
		Meta:    entity.Attributes{"flag": nil, "lang": "en"},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	if diff := cmp.Diff(entity.Attributes{"tag": "alpha", "lang": "en"}, got.Meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "000.00", got.GetVisibleNumber().String(), "number is immutable")
}

func TestModify_Relink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r := NewRecord(f.book, "text")
	r.ChapterID = &f.chapter.ID
	require.NoError(t, f.svc.Create(ctx, r, nil))

	_, err := f.svc.Modify(ctx, f.book, r.ID, Update{ChapterID: &f.foreignC.ID})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	unlink := id.ID{}
	got, err := f.svc.Modify(ctx, f.book, r.ID, Update{ChapterID: &unlink})
	require.NoError(t, err)
	assert.Nil(t, got.ChapterID)
}

func TestRemove_WrongBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewRecord(f.book, "text")
	require.NoError(t, f.svc.Create(ctx, r, nil))

	assert.True(t, apperror.IsNotFound(f.svc.Remove(ctx, f.other, r.ID)))
	require.NoError(t, f.svc.Remove(ctx, f.book, r.ID))
	_, err := f.svc.GetInBook(ctx, f.book, r.ID)
	assert.True(t, apperror.IsNotFound(err))
}
