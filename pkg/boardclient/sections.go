package boardclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Section struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type sectionBody struct {
	Name string `json:"name"`
}

func (c *Client) sections(ctx context.Context, method, path string, body any) ([]Section, error) {
	var sections []Section
	if err := c.do(ctx, method, path, body, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

func (c *Client) ListSections(ctx context.Context) ([]Section, error) {
	return c.sections(ctx, http.MethodGet, "/sections", nil)
}

func (c *Client) AddSection(ctx context.Context, name string) ([]Section, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidInput(ErrSectionName)
	}
	return c.sections(ctx, http.MethodPost, "/sections", sectionBody{Name: name})
}

func (c *Client) RenameSection(ctx context.Context, id, name string) ([]Section, error) {
	if id == "" {
		return nil, invalidInput(ErrSectionID)
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalidInput(ErrSectionName)
	}
	return c.sections(ctx, http.MethodPut, "/sections/"+url.PathEscape(id), sectionBody{Name: name})
}

func (c *Client) DeleteSection(ctx context.Context, id string) ([]Section, error) {
	if id == "" {
		return nil, invalidInput(ErrSectionID)
	}
	return c.sections(ctx, http.MethodDelete, "/sections/"+url.PathEscape(id), nil)
}
