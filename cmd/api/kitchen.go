package main

import (
	"net/http"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/go-chi/chi/v5"
)

// boardHandler godoc
//
//	@Summary		Kitchen board
//	@Description	Every order grouped into current, prepared and received, oldest first
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	domain.Board
//	@Failure		401	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/orders [get]
func (app *application) boardHandler(w http.ResponseWriter, r *http.Request) {
	board, err := app.orderService.Board(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, board); err != nil {
		app.internalServerError(w, r, err)
	}
}

// boardStreamHandler godoc
//
//	@Summary		Kitchen board event stream
//	@Description	Server-sent snapshot events of the board, re-sent after every order change
//	@Tags			admin
//	@Produce		text/event-stream
//	@Success		200
//	@Security		ApiKeyAuth
//	@Router			/admin/orders/stream [get]
func (app *application) boardStreamHandler(w http.ResponseWriter, r *http.Request) {
	tables := []string{domain.TableOrders, domain.TableOrderItems}
	app.streamSnapshots(w, r, tables, func(r *http.Request) (any, error) {
		return app.orderService.Board(r.Context())
	})
}

// markPreparedHandler godoc
//
//	@Summary		Mark order prepared
//	@Tags			admin
//	@Produce		json
//	@Param			token	path		string	true	"Order token"
//	@Success		200		{object}	domain.Order
//	@Failure		404		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/orders/{token}/prepared [post]
func (app *application) markPreparedHandler(w http.ResponseWriter, r *http.Request) {
	order, err := app.orderService.MarkPrepared(r.Context(), chi.URLParam(r, "token"), changedBy(r))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// markReceivedHandler godoc
//
//	@Summary		Mark order received
//	@Tags			admin
//	@Produce		json
//	@Param			token	path		string	true	"Order token"
//	@Success		200		{object}	domain.Order
//	@Failure		404		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/orders/{token}/received [post]
func (app *application) markReceivedHandler(w http.ResponseWriter, r *http.Request) {
	order, err := app.orderService.MarkReceived(r.Context(), chi.URLParam(r, "token"), changedBy(r))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}
