package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/basewire/basewire-go/internal/constants"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// CollectionsClient manages collection schemas.
type CollectionsClient struct {
	client *Client
}

const collectionsPath = "/api/collections"

func collectionPath(idOrName string) string {
	return collectionsPath + "/" + url.PathEscape(idOrName)
}

// GetList fetches one page of collections.
func (c *CollectionsClient) GetList(ctx context.Context, page, perPage int, opts *basewire.ListOptions) (*basewire.ListResult[*basewire.Collection], error) {
	if page <= 0 || perPage <= 0 {
		return nil, fmt.Errorf("%w: %w: page=%d perPage=%d",
			basewire.ErrValidation, basewire.ErrPageOutOfRange, page, perPage)
	}

	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("perPage", fmt.Sprintf("%d", perPage))

	resp, err := c.client.httpClient.Get(ctx, collectionsPath, query)
	if err != nil {
		return nil, err
	}

	var result basewire.ListResult[*basewire.Collection]

	err = decodeJSON(resp.Body, &result, "collection list")
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetFullList fetches every collection, paging internally.
func (c *CollectionsClient) GetFullList(ctx context.Context, opts *basewire.ListOptions) ([]*basewire.Collection, error) {
	return basewire.FetchAll(ctx, func(ctx context.Context, page, perPage int) (*basewire.ListResult[*basewire.Collection], error) {
		pageOpts := basewire.ListOptions{SkipTotal: true}
		if opts != nil {
			pageOpts = *opts
			pageOpts.SkipTotal = true
		}

		return c.GetList(ctx, page, perPage, &pageOpts)
	}, &basewire.PaginationOptions{PageSize: constants.DefaultPageSize})
}

// GetOne fetches a collection by ID or name.
func (c *CollectionsClient) GetOne(ctx context.Context, idOrName string) (*basewire.Collection, error) {
	if idOrName == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingCollection)
	}

	resp, err := c.client.httpClient.Get(ctx, collectionPath(idOrName), nil)
	if err != nil {
		return nil, err
	}

	var collection basewire.Collection

	err = decodeJSON(resp.Body, &collection, "collection")
	if err != nil {
		return nil, err
	}

	return &collection, nil
}

// Create adds a new collection.
func (c *CollectionsClient) Create(ctx context.Context, collection *basewire.Collection) (*basewire.Collection, error) {
	resp, err := c.client.httpClient.Post(ctx, collectionsPath, collection)
	if err != nil {
		return nil, err
	}

	var created basewire.Collection

	err = decodeJSON(resp.Body, &created, "created collection")
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Update patches a collection.
func (c *CollectionsClient) Update(ctx context.Context, idOrName string, collection *basewire.Collection) (*basewire.Collection, error) {
	if idOrName == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingCollection)
	}

	resp, err := c.client.httpClient.Patch(ctx, collectionPath(idOrName), collection)
	if err != nil {
		return nil, err
	}

	var updated basewire.Collection

	err = decodeJSON(resp.Body, &updated, "updated collection")
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a collection and all of its records.
func (c *CollectionsClient) Delete(ctx context.Context, idOrName string) error {
	if idOrName == "" {
		return fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingCollection)
	}

	_, err := c.client.httpClient.Delete(ctx, collectionPath(idOrName))

	return err
}

// Truncate deletes all records of a collection, keeping the schema.
func (c *CollectionsClient) Truncate(ctx context.Context, idOrName string) error {
	if idOrName == "" {
		return fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingCollection)
	}

	_, err := c.client.httpClient.Delete(ctx, collectionPath(idOrName)+"/truncate")

	return err
}

// Import bulk-upserts collection schemas. With deleteMissing, collections
// absent from the import set are removed.
func (c *CollectionsClient) Import(ctx context.Context, collections []*basewire.Collection, deleteMissing bool) error {
	_, err := c.client.httpClient.Put(ctx, collectionsPath+"/import", map[string]any{
		"collections":   collections,
		"deleteMissing": deleteMissing,
	})

	return err
}
