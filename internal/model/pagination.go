package model

import (
	"github.com/guregu/null/v6"
)

// PaginationParams represents the pagination parameters
type PaginationParams struct {
	Page  null.Int32
	Limit int32
}

func (p *PaginationParams) Offset() int32 {
	offset := (p.GetPage() - 1) * p.GetLimit()
	if offset < 0 {
		return 0
	}
	return offset
}

func (p *PaginationParams) GetPage() int32 {
	if p.Page.Int32 <= 0 {
		p.Page.SetValid(1)
	}
	return p.Page.Int32
}

func (p *PaginationParams) GetLimit() int32 {
	if p.Limit <= 0 {
		p.Limit = 10 // default limit
	}
	return p.Limit
}

// PaginateResult represents a paginated result set
type PaginateResult[T any] struct {
	PageParams PaginationParams
	Data       []T
	Total      null.Int64
}

func (p PaginateResult[T]) NextPage() null.Int32 {
	if p.Total.Valid {
		if int64(p.PageParams.GetPage()*p.PageParams.GetLimit()) < p.Total.Int64 {
			return null.Int32From(p.PageParams.GetPage() + 1)
		}
	}
	return null.Int32{}
}
