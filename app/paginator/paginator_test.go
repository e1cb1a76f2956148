package paginator

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestSlice(t *testing.T) {
	items := seq(23)

	tests := []struct {
		name     string
		raw      string
		number   int
		wantLen  int
		hasNext  bool
		hasPrev  bool
		firstVal int
	}{
		{"default", "", 1, 10, true, false, 1},
		{"second", "2", 2, 10, true, true, 11},
		{"last holds the remainder", "3", 3, 3, false, true, 21},
		{"beyond the end clamps to last", "99", 3, 3, false, true, 21},
		{"zero clamps to first", "0", 1, 10, true, false, 1},
		{"negative clamps to first", "-4", 1, 10, true, false, 1},
		{"not a number", "abc", 1, 10, true, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Slice(items, tt.raw, 10)
			assert.Equal(t, tt.number, page.Number)
			assert.Equal(t, 3, page.NumPages)
			assert.Equal(t, 23, page.Count)
			assert.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, tt.hasNext, page.HasNext())
			assert.Equal(t, tt.hasPrev, page.HasPrevious())
			assert.Equal(t, tt.firstVal, page.Items[0])
		})
	}
}

func TestPageSizeBound(t *testing.T) {
	for total := 0; total <= 35; total++ {
		for _, perPage := range []int{1, 3, 10} {
			numPages := NumPages(total, perPage)
			for n := 1; n <= numPages; n++ {
				page := Slice(seq(total), strconv.Itoa(n), perPage)
				assert.LessOrEqual(t, len(page.Items), perPage)
				if n == numPages && total > 0 {
					assert.Equal(t, total-(n-1)*perPage, len(page.Items), "total=%d perPage=%d", total, perPage)
				}
			}
		}
	}
}

func TestEmpty(t *testing.T) {
	page := Empty[string](10)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasOtherPages())
	assert.Equal(t, 1, page.NextNumber())
	assert.Equal(t, 1, page.PreviousNumber())
}

func TestPageNavigation(t *testing.T) {
	page := Slice(seq(30), "2", 10)
	assert.Equal(t, 3, page.NextNumber())
	assert.Equal(t, 1, page.PreviousNumber())
	assert.True(t, page.HasOtherPages())
	if diff := cmp.Diff([]int{1, 2, 3}, page.PageRange()); diff != "" {
		t.Errorf("PageRange mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch(t *testing.T) {
	var gotLimit, gotOffset int
	page, err := Fetch("3", 4,
		func() (int, error) { return 10, nil },
		func(limit, offset int) ([]string, error) {
			gotLimit, gotOffset = limit, offset
			return []string{"i", "j"}, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 4, gotLimit)
	assert.Equal(t, 8, gotOffset)
	assert.Equal(t, []string{"i", "j"}, page.Items)

	t.Run("empty source skips load", func(t *testing.T) {
		page, err := Fetch("5", 4,
			func() (int, error) { return 0, nil },
			func(limit, offset int) ([]string, error) {
				t.Fatal("load called for an empty source")
				return nil, nil
			},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Number)
		assert.Empty(t, page.Items)
	})

	t.Run("count error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Fetch("1", 4,
			func() (int, error) { return 0, boom },
			func(limit, offset int) ([]string, error) { return nil, nil },
		)
		assert.ErrorIs(t, err, boom)
	})
}
