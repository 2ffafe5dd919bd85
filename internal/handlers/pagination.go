package handlers

import (
	"net/http"
	"strconv"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Read limit and offset query params
// Absent values get defaults, anything malformed or out of range is apperrors.ErrInvalidPagination
func parsePage(r *http.Request) (repository.Page, error) {
	page := repository.Page{Limit: defaultLimit, Offset: 0}
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return page, apperrors.ErrInvalidPagination
		}
		page.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return page, apperrors.ErrInvalidPagination
		}
		page.Offset = offset
	}

	return page, nil
}
