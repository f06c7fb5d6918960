package main

import (
	"net/http"

	"github.com/Beka01247/restaurant-orders/internal/domain"
)

// revenueHandler godoc
//
//	@Summary		Revenue
//	@Description	Sum of received orders created inside the window
//	@Tags			admin
//	@Produce		json
//	@Param			window	query		string	false	"all, today, yesterday, this_month or last_month"	default(all)
//	@Success		200		{object}	domain.Revenue
//	@Failure		400		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/revenue [get]
func (app *application) revenueHandler(w http.ResponseWriter, r *http.Request) {
	window := domain.RevenueWindow(r.URL.Query().Get("window"))
	if window == "" {
		window = domain.RevenueAll
	}

	revenue, err := app.orderService.Revenue(r.Context(), window)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, revenue); err != nil {
		app.internalServerError(w, r, err)
	}
}
