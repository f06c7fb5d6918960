package main

import (
	"errors"
	"net/http"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/service"
	"github.com/go-chi/chi/v5"
)

type CreateOrderRequest struct {
	Items       []domain.OrderLine `json:"items" validate:"required,min=1,dive"`
	ServiceType domain.ServiceType `json:"service_type" validate:"required,oneof=dine-in parcel"`
	TableNumber *int               `json:"table_number" validate:"omitempty,min=1"`
}

func (req CreateOrderRequest) fulfillment() (domain.Fulfillment, error) {
	if req.ServiceType == domain.ServiceParcel {
		return domain.Parcel(), nil
	}
	if req.TableNumber == nil {
		return domain.Fulfillment{}, domain.NewValidationError("table_number", "is required for dine-in orders")
	}
	return domain.DineIn(*req.TableNumber), nil
}

// createOrderHandler godoc
//
//	@Summary		Place an order
//	@Description	Places a dine-in or parcel order and returns it with its pickup token
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order"
//	@Success		201		{object}	domain.Order
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Router			/orders [post]
func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	fulfillment, err := req.fulfillment()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.orderService.PlaceOrder(r.Context(), service.PlaceOrderInput{
		Lines:       req.Items,
		Fulfillment: fulfillment,
	})
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusCreated, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getOrderHandler godoc
//
//	@Summary		Track an order
//	@Description	Returns the latest order holding the token
//	@Tags			orders
//	@Produce		json
//	@Param			token	path		string	true	"Order token"
//	@Success		200		{object}	domain.Order
//	@Failure		404		{object}	map[string]string
//	@Router			/orders/{token} [get]
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		app.badRequestResponse(w, r, errors.New("token is required"))
		return
	}

	order, err := app.orderService.GetByToken(r.Context(), token)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

// orderHistoryHandler godoc
//
//	@Summary		Order status history
//	@Description	Audit records of the order, newest first
//	@Tags			admin
//	@Produce		json
//	@Param			token	path		string	true	"Order token"
//	@Success		200		{array}		domain.OrderStatusAudit
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/orders/{token}/history [get]
func (app *application) orderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	history, err := app.orderService.History(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, history); err != nil {
		app.internalServerError(w, r, err)
	}
}
