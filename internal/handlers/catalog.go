package handlers

import (
	"net/http"

	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/models"
)

func handleListPackages(catalogService catalogService, l logger.Logger) http.Handler {
	type response struct {
		Packages []models.Package `json:"packages"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		packages, err := catalogService.Packages(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, response{Packages: nonNil(packages)})
	})
}

func handleListGames(catalogService catalogService, l logger.Logger) http.Handler {
	type response struct {
		Games []models.Game `json:"games"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		games, err := catalogService.Games(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, response{Games: nonNil(games)})
	})
}

func handleListPromotions(catalogService catalogService, l logger.Logger) http.Handler {
	type response struct {
		Promotions []models.Promotion `json:"promotions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		promotions, err := catalogService.Promotions(r.Context())
		if err != nil {
			renderError(w, err, l)
			return
		}
		render.JSON(w, response{Promotions: nonNil(promotions)})
	})
}

// Empty lists are rendered as [] and not null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
