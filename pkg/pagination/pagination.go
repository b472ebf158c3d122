package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// Params holds page-based pagination parameters for list requests.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps the parameters to the ranges the backend accepts.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Query encodes the parameters as page/page_size query values.
func (p Params) Query() url.Values {
	p = p.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("page_size", strconv.Itoa(p.PageSize))
	return v
}

// SkipLimit encodes the parameters as skip/limit query values, the form the
// inventory endpoints take.
func (p Params) SkipLimit() url.Values {
	p = p.Normalize()
	v := url.Values{}
	v.Set("skip", strconv.Itoa((p.Page-1)*p.PageSize))
	v.Set("limit", strconv.Itoa(p.PageSize))
	return v
}

// Offset returns the zero-based offset of the first item on the page.
func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

// HasNext reports whether another page exists after this one.
func (p Params) HasNext(total int) bool {
	p = p.Normalize()
	return p.Offset()+p.PageSize < total
}

// NextPage returns the parameters for the following page.
func (p Params) NextPage() Params {
	p = p.Normalize()
	return Params{Page: p.Page + 1, PageSize: p.PageSize}
}

// Page wraps a paginated list response body.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	PageNum  int `json:"page"`
	PageSize int `json:"page_size"`
}

// HasMore reports whether the server holds items beyond this page.
func (p *Page[T]) HasMore() bool {
	return (p.PageNum-1)*p.PageSize+len(p.Items) < p.Total
}
