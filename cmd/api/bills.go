package main

import "net/http"

// listOpenBillsHandler godoc
//
//	@Summary		Open table bills
//	@Description	The bill of every open table session, ordered by table number
//	@Tags			admin
//	@Produce		json
//	@Success		200	{array}		domain.Bill
//	@Failure		401	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/bills [get]
func (app *application) listOpenBillsHandler(w http.ResponseWriter, r *http.Request) {
	bills, err := app.sessionService.OpenBills(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, bills); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getBillHandler godoc
//
//	@Summary		Bill of a table session
//	@Tags			admin
//	@Produce		json
//	@Param			session_id	path		string	true	"Session ID"
//	@Success		200			{object}	domain.Bill
//	@Failure		400			{object}	map[string]string
//	@Failure		404			{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/bills/{session_id} [get]
func (app *application) getBillHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuidParam(r, "session_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	bill, err := app.sessionService.Bill(r.Context(), sessionID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, bill); err != nil {
		app.internalServerError(w, r, err)
	}
}

// closeSessionHandler godoc
//
//	@Summary		Close a table session
//	@Description	Settles the table; its next dine-in order opens a new session
//	@Tags			admin
//	@Produce		json
//	@Param			session_id	path		string	true	"Session ID"
//	@Success		200			{object}	domain.TableSession
//	@Failure		404			{object}	map[string]string
//	@Failure		409			{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/admin/bills/{session_id}/close [post]
func (app *application) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuidParam(r, "session_id")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, err := app.sessionService.Close(r.Context(), sessionID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}

	if err := app.jsonRespone(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}
