package main

import "net/http"

type UpdateSettingsRequest struct {
	TotalTables int `json:"total_tables" validate:"required,min=1,max=500"`
}

// getSettingsHandler godoc
//
//	@Summary		Restaurant settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	domain.RestaurantSettings
//	@Router			/settings [get]
func (app *application) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := app.settingsService.Get(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, settings); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateSettingsHandler godoc
//
//	@Summary		Update restaurant settings
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UpdateSettingsRequest	true	"Settings"
//	@Success		200		{object}	domain.RestaurantSettings
//	@Failure		400		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/settings [put]
func (app *application) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	settings, err := app.settingsService.SetTotalTables(r.Context(), req.TotalTables)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, settings); err != nil {
		app.internalServerError(w, r, err)
	}
}
