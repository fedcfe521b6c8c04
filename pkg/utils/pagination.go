package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Pagination struct {
	Page  int
	Limit int
	Sort  string
}

// sortColumns whitelists sortable fields; anything else is ignored so the
// sort parameter can never reach the SQL layer raw.
var sortColumns = map[string]string{
	"id":        "id",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"createdAt": "created_at",
	"status":    "status",
	"subject":   "subject",
}

// ParsePagination reads page/limit/sort query parameters with sane bounds.
// Sort accepts "field" or "field,desc". Without a sort the persistence
// layer's default order applies.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return Pagination{Page: page, Limit: limit, Sort: parseSort(c.Query("sort"))}
}

func parseSort(raw string) string {
	field, direction, _ := strings.Cut(strings.TrimSpace(raw), ",")
	column, ok := sortColumns[field]
	if !ok {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(direction), "desc") {
		return column + " DESC"
	}
	return column
}

// ApplyPagination scopes a query to the requested page.
func ApplyPagination(query *gorm.DB, p Pagination) *gorm.DB {
	if p.Sort != "" {
		query = query.Order(p.Sort)
	}
	return query.Offset((p.Page - 1) * p.Limit).Limit(p.Limit)
}
