package handlers

import (
	"net/http"
	"time"

	"github.com/nkiryanov/crownplay/internal/handlers/render"
	"github.com/nkiryanov/crownplay/internal/handlers/userctx"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/models"
)

type tokenResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Authenticated user put to context by middleware
// Writes 500 if there is no user: route is not protected then
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
	}
	return user, ok
}

func handleSignup(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		Name     string `json:"name" validate:"omitempty,notblank,max=100"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Signup(r.Context(), data.Email, data.Password, data.Name)
		if err != nil {
			renderError(w, err, l)
			return
		}

		l.Info("User signed up", "user_id", user.ID)
		render.JSONWithStatus(w, tokenResponse{
			User:      newUserResponse(user),
			Token:     token.Value,
			ExpiresAt: token.ExpiresAt,
		}, http.StatusCreated)
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, token, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, tokenResponse{
			User:      newUserResponse(user),
			Token:     token.Value,
			ExpiresAt: token.ExpiresAt,
		})
	})
}

// Tokens are stateless, client just forgets it
func handleLogout() http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{Message: "Logged out successfully"})
	})
}

func handleMe(userService userService, l logger.Logger) http.Handler {
	type response struct {
		User userWithWalletResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		profile, err := userService.GetProfile(r.Context(), user.ID)
		if err != nil {
			renderError(w, err, l)
			return
		}

		render.JSON(w, response{User: newUserWithWalletResponse(profile)})
	})
}
