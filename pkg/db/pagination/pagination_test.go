package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id int64 }

func TestBuildCursorPageRoundTripsLastID(t *testing.T) {
	rows := []*row{{1}, {2}, {3}}
	page, info := BuildCursorPage(rows, 2, func(r *row) string { return strconv.FormatInt(r.id, 10) })

	require.Len(t, page, 2)
	assert.True(t, info.HasMore)

	after, err := Pagination{PageToken: info.NextPageToken}.AfterID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), after)
}

func TestBuildCursorPageLastPage(t *testing.T) {
	rows := []*row{{1}}
	page, info := BuildCursorPage(rows, 2, func(r *row) string { return strconv.FormatInt(r.id, 10) })
	assert.Len(t, page, 1)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestPaginationLimitAndBadToken(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Limit())
	assert.Equal(t, 10, Pagination{PageSize: 10}.Limit())

	_, err := Pagination{PageToken: "%%%"}.AfterID()
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}
