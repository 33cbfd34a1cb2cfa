package numbering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgl/internal/core/id"
	corenumbering "cgl/internal/core/numbering"
)

func fixedFinder(v corenumbering.VisibleNumber) corenumbering.MaxFinder {
	return corenumbering.MaxFinderFunc(func(context.Context, corenumbering.Scope) (*corenumbering.VisibleNumber, error) {
		return &v, nil
	})
}

func TestScopeFinder_RoutesByKind(t *testing.T) {
	finder := ScopeFinder{
		corenumbering.KindBook:    fixedFinder(corenumbering.MustNew(10, 0)),
		corenumbering.KindChapter: fixedFinder(corenumbering.MustNew(20, 0)),
	}

	got, err := finder.MaxNumber(context.Background(), corenumbering.BookScope())
	require.NoError(t, err)
	assert.Equal(t, "010.00", got.String())

	got, err = finder.MaxNumber(context.Background(), corenumbering.ChapterScope(id.New()))
	require.NoError(t, err)
	assert.Equal(t, "020.00", got.String())

	_, err = finder.MaxNumber(context.Background(), corenumbering.RecordScope(id.New()))
	assert.Error(t, err)
}

func TestNewAllocator(t *testing.T) {
	finder := fixedFinder(corenumbering.MustNew(1, 0))

	alloc, err := NewAllocator(corenumbering.StrategyCounter, newMockQuerier(), finder)
	require.NoError(t, err)
	assert.IsType(t, &CounterAllocator{}, alloc)

	alloc, err = NewAllocator(corenumbering.StrategyScan, nil, finder)
	require.NoError(t, err)
	n, err := alloc.Allocate(context.Background(), corenumbering.BookScope())
	require.NoError(t, err)
	assert.Equal(t, "006.00", n.String())

	_, err = NewAllocator(corenumbering.StrategyCounter, nil, finder)
	assert.Error(t, err)

	_, err = NewAllocator("lock", nil, finder)
	assert.Error(t, err)
}
