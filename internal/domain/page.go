package domain

import (
	"net/url"
	"strconv"
)

// Page is the backend's paged-list envelope.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

type PageQuery struct {
	Page int
	Size int
}

func (q PageQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	return v
}

func TotalPagesFor(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Pager drives previous/next controls over [0, Total-1].
type Pager struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

func (p Pager) HasPrev() bool { return p.Current > 0 }
func (p Pager) HasNext() bool { return p.Current < p.Total-1 }

func (p Pager) Clamp(page int) int {
	last := p.Total - 1
	if last < 0 {
		last = 0
	}
	switch {
	case page < 0:
		return 0
	case page > last:
		return last
	}
	return page
}

func (p Pager) Next() Pager {
	if p.HasNext() {
		p.Current++
	}
	return p
}

func (p Pager) Prev() Pager {
	if p.HasPrev() {
		p.Current--
	}
	return p
}
