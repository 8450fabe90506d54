package localserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{err: fmt.Errorf(format, args...), code: code}
}

func ParseRequest[T any](r *http.Request) (T, error) {
	var data T
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("error parsing request body", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}
	return data, nil
}

func ParseRequestQueryParams[T any](r *http.Request) (T, error) {
	var data T
	if err := r.ParseForm(); err != nil {
		slog.Error("error parsing form", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&data, r.Form); err != nil {
		slog.Error("error decoding query params", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}

	return data, nil
}

func RestHandler(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			var cerr *codedError
			if errors.As(err, &cerr) {
				http.Error(w, err.Error(), cerr.code)
				if cerr.code == http.StatusInternalServerError {
					slog.Error("internal server error received in endpoint", "error", err)
				}
			} else {
				slog.Error("received non coded error from endpoint", "error", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		if res == nil {
			res = struct{}{}
		}

		WriteJsonResponse(w, res)
	}
}

func WriteJsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error encoding json response", "error", err)
	}
}
