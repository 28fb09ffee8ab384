// SPDX-FileCopyrightText: © 2026 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Message is a JSON formatted status message.
type Message struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Render converts any value to JSON and sends the response.
func Render(w http.ResponseWriter, r *http.Request, status int, value any) {
	b := &bytes.Buffer{}
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		Log(r).Error("encoding error", slog.Any("err", err))
		http.Error(w, http.StatusText(500), 500)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	if status >= 100 {
		w.WriteHeader(status)
	}
	w.Write(b.Bytes()) //nolint:errcheck
}

// Status sends a text plain response with the given status code.
func Status(w http.ResponseWriter, _ *http.Request, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	fmt.Fprintln(w, http.StatusText(status))
}

// Err renders an error.
// If the error is "classic", it returns a 500 response and logs
// the error.
// If the error provides a StatusCode() method, its value is the
// response status.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	status := 500
	if e, ok := err.(interface{ StatusCode() int }); ok {
		status = e.StatusCode()
	}

	if status >= 500 {
		Log(r).Error("server error", slog.Any("err", err))
	} else {
		Log(r).Warn("request error", slog.Int("status", status), slog.Any("err", err))
	}

	Status(w, r, status)
}
