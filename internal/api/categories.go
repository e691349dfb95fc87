package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coffertool/coffer/internal/common"
	"github.com/coffertool/coffer/internal/model"
)

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name            string  `json:"name"`
	AllocatedBudget float64 `json:"allocated_budget"`
}

// ListCategories returns all budget categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.get(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategory returns a single category by ID. The API has no item
// endpoint, so this filters the list.
func (c *Client) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
}

// CreateCategory creates a new budget category. Finance only.
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (*model.Category, error) {
	var out model.Category
	if err := c.post(ctx, "/categories", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCategory updates an existing category. Finance only.
func (c *Client) UpdateCategory(ctx context.Context, id int, req CategoryRequest) (*model.Category, error) {
	var out model.Category
	if err := c.put(ctx, fmt.Sprintf("/categories/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory deletes a category. Finance only.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil, nil)
}
