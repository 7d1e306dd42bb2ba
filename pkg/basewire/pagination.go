package basewire

import (
	"context"
	"fmt"
)

// PageFunc fetches one page of a listing.
type PageFunc[T any] func(ctx context.Context, page, perPage int) (*ListResult[T], error)

// PaginationOptions tune the pagination helpers.
type PaginationOptions struct {
	// PageSize is the perPage value used for each request. Zero means the
	// default of 100.
	PageSize int
	// MaxPages caps the number of pages fetched. Zero means unlimited.
	MaxPages int
}

const defaultPageSize = 100

func (o *PaginationOptions) pageSize() int {
	if o == nil || o.PageSize <= 0 {
		return defaultPageSize
	}

	return o.PageSize
}

func (o *PaginationOptions) maxPages() int {
	if o == nil {
		return 0
	}

	return o.MaxPages
}

// Iterator walks a paginated listing page by page.
type Iterator[T any] struct {
	ctx      context.Context
	fetch    PageFunc[T]
	perPage  int
	nextPage int
	done     bool
}

// NewIterator creates an iterator over a paginated listing.
func NewIterator[T any](ctx context.Context, fetch PageFunc[T], opts *PaginationOptions) *Iterator[T] {
	return &Iterator[T]{
		ctx:      ctx,
		fetch:    fetch,
		perPage:  opts.pageSize(),
		nextPage: 1,
	}
}

// HasNext reports whether another page may be available.
func (it *Iterator[T]) HasNext() bool {
	return !it.done
}

// Next fetches the next page of items. It returns an empty slice once the
// listing is exhausted.
func (it *Iterator[T]) Next() ([]T, error) {
	if it.done {
		return nil, nil
	}

	result, err := it.fetch(it.ctx, it.nextPage, it.perPage)
	if err != nil {
		it.done = true

		return nil, fmt.Errorf("fetching page %d: %w", it.nextPage, err)
	}

	it.nextPage++

	// A short page means the listing is exhausted; this also covers
	// skipTotal responses where TotalPages is not populated.
	if len(result.Items) < it.perPage {
		it.done = true
	}

	return result.Items, nil
}

// All drains the iterator and returns the remaining items.
func (it *Iterator[T]) All() ([]T, error) {
	var all []T

	for it.HasNext() {
		items, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
	}

	return all, nil
}

// ForEach applies fn to every remaining item. Iteration stops on the first
// error from fn.
func (it *Iterator[T]) ForEach(fn func(item T) error) error {
	for it.HasNext() {
		items, err := it.Next()
		if err != nil {
			return err
		}

		for _, item := range items {
			err = fn(item)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// FetchAll collects every item of a paginated listing.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], opts *PaginationOptions) ([]T, error) {
	iterator := NewIterator(ctx, fetch, opts)
	maxPages := opts.maxPages()

	var all []T

	for page := 0; iterator.HasNext(); page++ {
		if maxPages > 0 && page >= maxPages {
			break
		}

		items, err := iterator.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, items...)
	}

	return all, nil
}

// PageResult is one streamed page, or the error that ended the stream.
type PageResult[T any] struct {
	Items []T
	Err   error
}

// Stream fetches pages in a goroutine and delivers them on the returned
// channel. The channel closes after the last page or the first error;
// cancel ctx to stop early.
func Stream[T any](ctx context.Context, fetch PageFunc[T], opts *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		iterator := NewIterator(ctx, fetch, opts)
		maxPages := opts.maxPages()

		for page := 0; iterator.HasNext(); page++ {
			if maxPages > 0 && page >= maxPages {
				return
			}

			items, err := iterator.Next()
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			if len(items) == 0 {
				return
			}

			select {
			case results <- PageResult[T]{Items: items}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}
