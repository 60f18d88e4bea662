package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationParams holds pagination-related query parameters
type PaginationParams struct {
	Page     int
	PageSize int
}

// ParsePaginationParams reads page and pageSize from the query string.
// Missing or unparsable values come back as 0 so the service applies its
// defaults and caps.
func ParsePaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
	}
}

// SetPaginationHeaders exposes paging metadata as response headers
func SetPaginationHeaders(c *gin.Context, total int64, page, pageSize int) {
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.Header("X-Page", strconv.Itoa(page))
	c.Header("X-Page-Size", strconv.Itoa(pageSize))
}
