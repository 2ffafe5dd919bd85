package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/repository"
)

func TestParsePage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			query    string
			expected repository.Page
		}{
			{"", repository.Page{Limit: 20, Offset: 0}},
			{"?limit=40", repository.Page{Limit: 40, Offset: 0}},
			{"?limit=20&offset=20", repository.Page{Limit: 20, Offset: 20}},
			{"?limit=100&offset=0", repository.Page{Limit: 100, Offset: 0}},
		}

		for _, tc := range tests {
			t.Run(tc.query, func(t *testing.T) {
				page, err := parsePage(httptest.NewRequest(http.MethodGet, "/api/player/transactions"+tc.query, nil))

				require.NoError(t, err)
				require.Equal(t, tc.expected, page)
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, query := range []string{"?limit=0", "?limit=101", "?limit=ten", "?offset=-1", "?offset=1.5"} {
			t.Run(query, func(t *testing.T) {
				_, err := parsePage(httptest.NewRequest(http.MethodGet, "/api/player/transactions"+query, nil))

				require.ErrorIs(t, err, apperrors.ErrInvalidPagination)
			})
		}
	})
}
