package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const streamKeepAlive = 15 * time.Second

// streamSnapshots writes the result of load as a server-sent "snapshot" event, then
// writes it again after every change of the given tables until the client leaves.
func (app *application) streamSnapshots(w http.ResponseWriter, r *http.Request, tables []string, load func(*http.Request) (any, error)) {
	rc := http.NewResponseController(w)
	// the server write timeout does not apply to streams
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		app.internalServerError(w, r, err)
		return
	}

	changes, cancel := app.hub.Subscribe(tables...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() error {
		data, err := load(r)
		if err != nil {
			return err
		}
		body, err := json.Marshal(data)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", body); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(); err != nil {
		app.logger.Warnw("stream snapshot failed", "path", r.URL.Path, "error", err)
		return
	}

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-app.streamsDone:
			return
		case <-changes:
			if err := send(); err != nil {
				app.logger.Warnw("stream snapshot failed", "path", r.URL.Path, "error", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
