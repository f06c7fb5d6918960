package main

import (
	"net/http"

	"github.com/Beka01247/restaurant-orders/internal/domain"
)

type CreateMenuImportRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" validate:"required"`
	Range         string `json:"range"`
}

type CreateMenuImportResponse struct {
	TaskID string                  `json:"task_id"`
	Status domain.ImportTaskStatus `json:"status"`
}

// createMenuImportHandler godoc
//
//	@Summary		Import menu from Google Sheets
//	@Description	Queues a task that upserts menu items by name from the spreadsheet
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateMenuImportRequest	true	"Spreadsheet"
//	@Success		201		{object}	CreateMenuImportResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		503		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu/import [post]
func (app *application) createMenuImportHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuImportRequest
	if err := readJson(w, r, &req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(req); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	task, err := app.importService.CreateImportTask(r.Context(), req.SpreadsheetID, req.Range)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	response := CreateMenuImportResponse{
		TaskID: task.ID.String(),
		Status: task.Status,
	}

	if err := app.jsonRespone(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMenuImportHandler godoc
//
//	@Summary		Menu import task status
//	@Tags			admin
//	@Produce		json
//	@Param			task_id	path		string	true	"Task ID"
//	@Success		200		{object}	domain.MenuImportTask
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/menu/import/{task_id} [get]
func (app *application) getMenuImportHandler(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuidParam(r, "task_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	task, err := app.importService.GetTask(r.Context(), taskID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, task); err != nil {
		app.internalServerError(w, r, err)
	}
}
