// Package paginator splits ordered result sets into 1-indexed pages.
package paginator

import (
	"strconv"
	"strings"
)

// Page is one window of an ordered result set.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for rendering page links.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// NumPages returns how many pages total items fill. An empty set still has
// one (empty) page.
func NumPages(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Clamp parses the raw page query value and clamps it into [1, numPages].
// Anything that is not an integer means the first page.
func Clamp(raw string, numPages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > numPages {
		return numPages
	}
	return n
}

// Fetch resolves the page named by raw against a source that can count its
// rows and load a window of them.
func Fetch[T any](raw string, perPage int, count func() (int, error), load func(limit, offset int) ([]T, error)) (*Page[T], error) {
	if perPage < 1 {
		perPage = 1
	}
	total, err := count()
	if err != nil {
		return nil, err
	}
	numPages := NumPages(total, perPage)
	number := Clamp(raw, numPages)

	items := []T{}
	if total > 0 {
		items, err = load(perPage, (number-1)*perPage)
		if err != nil {
			return nil, err
		}
	}
	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		Count:    total,
		PerPage:  perPage,
	}, nil
}

// Slice pages an in-memory slice.
func Slice[T any](items []T, raw string, perPage int) *Page[T] {
	page, _ := Fetch(raw, perPage,
		func() (int, error) { return len(items), nil },
		func(limit, offset int) ([]T, error) {
			end := offset + limit
			if end > len(items) {
				end = len(items)
			}
			return items[offset:end], nil
		},
	)
	return page
}

// Empty is the single empty page.
func Empty[T any](perPage int) *Page[T] {
	return Slice([]T{}, "1", perPage)
}
