package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/store"
)

const MAX_PAGE_SIZE = 100

// ListLotsQueryParams holds query parameters for GET /lots
type ListLotsQueryParams struct {
	// Filters
	Status   string `form:"status"`
	Recalled *bool  `form:"recalled"`
	Owner    string `form:"owner"`

	// Pagination
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// PageQueryParams holds plain pagination parameters
type PageQueryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

func capPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > MAX_PAGE_SIZE {
		limit = MAX_PAGE_SIZE
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ParseListLotsQuery parses and validates query parameters for GET /lots
func ParseListLotsQuery(c *gin.Context) (store.LotQueryFilter, error) {
	var params ListLotsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return store.LotQueryFilter{}, err
	}

	filter := store.LotQueryFilter{
		Recalled: params.Recalled,
	}

	if params.Status != "" {
		status := domain.Status(params.Status)
		if !domain.IsValidStatus(status) {
			return store.LotQueryFilter{}, fmt.Errorf("unknown status %q", params.Status)
		}
		filter.Status = status
	}

	if params.Owner != "" {
		if !domain.IsValidAddress(params.Owner) {
			return store.LotQueryFilter{}, fmt.Errorf("invalid owner address %q", params.Owner)
		}
		// Addresses are stored in checksummed form
		filter.Owner = domain.ChecksumAddress(params.Owner)
	}

	filter.Limit, filter.Offset = capPage(params.Limit, params.Offset)

	return filter, nil
}

// ParsePageQuery parses plain pagination parameters
func ParsePageQuery(c *gin.Context) (limit, offset int, err error) {
	var params PageQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return 0, 0, err
	}

	limit, offset = capPage(params.Limit, params.Offset)
	return limit, offset, nil
}
