// model/page.go
package model

// PageRequest carries paging and sorting for list endpoints. Sort keys
// are whitelisted per repository; unknown keys fall back to a default.
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 || p.Size > 100 {
		p.Size = 10
	}
	return p
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.Size }

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}
