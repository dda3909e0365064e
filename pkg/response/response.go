// Package response writes the storefront's JSON envelope.
//
// Successful bodies carry `success: true`, an optional message, and one or
// more entity keys:
//
//	{ "success": true, "message": "Login successfully", "user": {...}, "token": "..." }
//
// Failures carry `success: false`, the status, and a message. A stack trace
// is appended only when APP_DEBUG is enabled.
package response

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/logger"
)

// M is a shorthand for envelope payloads.
type M map[string]interface{}

func write(w http.ResponseWriter, status int, body M) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 envelope with the given message and entity keys.
func OK(w http.ResponseWriter, message string, data M) {
	JSON(w, http.StatusOK, message, data)
}

// Created sends a 201 envelope.
func Created(w http.ResponseWriter, message string, data M) {
	JSON(w, http.StatusCreated, message, data)
}

// JSON sends a success envelope with an explicit status.
func JSON(w http.ResponseWriter, status int, message string, data M) {
	body := M{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	write(w, status, body)
}

// Declined sends a 200 body with success:false. Used for outcomes the API
// treats as non-errors, like registering an email that already exists.
func Declined(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, M{"success": false, "message": message})
}

// ValidationFailed writes a 400 with the field-level error map.
func ValidationFailed(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, M{
		"success": false,
		"status":  http.StatusBadRequest,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// Fail classifies err through apperr and writes the error envelope.
// Internal causes are logged, never sent to the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := ae.Kind.Status()

	if ae.Kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("request failed",
			"status", status,
			"error", ae.Error(),
			"path", r.URL.Path,
		)
	}

	body := M{
		"success": false,
		"status":  status,
		"message": ae.Message,
	}
	if config.Debug() {
		body["stack"] = string(debug.Stack())
	}
	write(w, status, body)
}
