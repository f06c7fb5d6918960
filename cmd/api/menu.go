package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/service"
	"github.com/shopspring/decimal"
)

type CreateMenuItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Description string          `json:"description" validate:"max=2000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

type UpdateMenuItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Price       *decimal.Decimal `json:"price" swaggertype:"number"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateMenuItemStatusRequest sets the status. An empty status toggles it.
type UpdateMenuItemStatusRequest struct {
	Status domain.MenuItemStatus `json:"status" validate:"omitempty,oneof=enabled disabled"`
}

// listMenuHandler godoc
//
//	@Summary		Customer menu
//	@Description	Enabled menu items, newest first
//	@Tags			menu
//	@Produce		json
//	@Success		200	{array}		domain.MenuItem
//	@Failure		500	{object}	map[string]string
//	@Router			/menu [get]
func (app *application) listMenuHandler(w http.ResponseWriter, r *http.Request) {
	items, err := app.menuService.ListAvailable(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, items); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listAllMenuHandler godoc
//
//	@Summary		Staff menu
//	@Description	Every menu item including disabled ones, newest first
//	@Tags			admin
//	@Produce		json
//	@Success		200	{array}		domain.MenuItem
//	@Failure		401	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu [get]
func (app *application) listAllMenuHandler(w http.ResponseWriter, r *http.Request) {
	items, err := app.menuService.ListAll(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, items); err != nil {
		app.internalServerError(w, r, err)
	}
}

// createMenuItemHandler godoc
//
//	@Summary		Create menu item
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateMenuItemRequest	true	"Menu item"
//	@Success		201		{object}	domain.MenuItem
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu [post]
func (app *application) createMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	item, err := app.menuService.Create(r.Context(), service.CreateMenuItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, item); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateMenuItemHandler godoc
//
//	@Summary		Update menu item
//	@Description	Partial update; omitted fields are left unchanged
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Menu item ID"
//	@Param			request	body		UpdateMenuItemRequest	true	"Fields to change"
//	@Success		200		{object}	domain.MenuItem
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu/{id} [patch]
func (app *application) updateMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req UpdateMenuItemRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	item, err := app.menuService.Update(r.Context(), id, domain.MenuItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, item); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateMenuItemStatusHandler godoc
//
//	@Summary		Enable, disable or toggle a menu item
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Menu item ID"
//	@Param			request	body		UpdateMenuItemStatusRequest	true	"Target status, empty to toggle"
//	@Success		200		{object}	domain.MenuItem
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu/{id}/status [patch]
func (app *application) updateMenuItemStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req UpdateMenuItemStatusRequest
	if err := readJson(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var item *domain.MenuItem
	if req.Status == "" {
		item, err = app.menuService.Toggle(r.Context(), id)
	} else {
		item, err = app.menuService.SetStatus(r.Context(), id, req.Status)
	}
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, item); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMenuItemHandler godoc
//
//	@Summary		Delete menu item
//	@Description	Past orders keep the captured name and price
//	@Tags			admin
//	@Param			id	path	string	true	"Menu item ID"
//	@Success		204
//	@Failure		404	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu/{id} [delete]
func (app *application) deleteMenuItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.menuService.Delete(r.Context(), id); err != nil {
		app.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// menuStreamHandler godoc
//
//	@Summary		Menu event stream
//	@Description	Server-sent snapshot events of the customer menu, re-sent after every menu change
//	@Tags			menu
//	@Produce		text/event-stream
//	@Success		200
//	@Router			/menu/stream [get]
func (app *application) menuStreamHandler(w http.ResponseWriter, r *http.Request) {
	app.streamSnapshots(w, r, []string{domain.TableMenuItems}, func(r *http.Request) (any, error) {
		return app.menuService.ListAvailable(r.Context())
	})
}
