package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/auth"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// loginHandler godoc
//
//	@Summary		Staff login
//	@Description	Exchanges the staff password for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Failure		503		{object}	map[string]string
//	@Router			/auth/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, expiresAt, err := app.auth.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		app.unauthorizedErrorResponse(w, r, err)
		return
	case errors.Is(err, auth.ErrNotConfigured):
		app.serviceUnavailableResponse(w, r, err)
		return
	case err != nil:
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt}); err != nil {
		app.internalServerError(w, r, err)
	}
}
