// Package apiclient talks to the catalog REST API on behalf of the web front-end.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anoa.com/catalog/internal/entity"
	productDto "anoa.com/catalog/internal/modules/product/dto"
	userDto "anoa.com/catalog/internal/modules/user/dto"
	commonDto "anoa.com/catalog/pkg/dto"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNotFound     = errors.New("api: not found")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api returned status %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type CategoryInput struct {
	Name string `json:"name"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *zap.Logger
}

func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log.Named("api_client"),
	}
}

// WithToken returns a copy of the client that sends token as a Bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Login(ctx context.Context, username, password string) (*userDto.AuthResponse, error) {
	var res userDto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", userDto.LoginInput{Username: username, Password: password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetCategories(ctx context.Context) ([]entity.Category, error) {
	var res []entity.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	var res entity.Category
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	var res entity.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), in, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil)
}

func (c *Client) GetProducts(ctx context.Context, filter productDto.ProductFilter) (*commonDto.PagedResult[entity.Product], error) {
	var res commonDto.PagedResult[entity.Product]
	path := "/api/products"
	if q := productQuery(filter).Encode(); q != "" {
		path += "?" + q
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	var res entity.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetProductsGrouped(ctx context.Context) ([]entity.ProductGroup, error) {
	var res []entity.ProductGroup
	if err := c.do(ctx, http.MethodGet, "/api/products/grouped", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) CreateProduct(ctx context.Context, in productDto.CreateProductRequest) (*entity.Product, error) {
	var res entity.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in productDto.UpdateProductRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), in, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
}

func productQuery(f productDto.ProductFilter) url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortDesc {
		q.Set("sort_desc", "true")
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("api response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
