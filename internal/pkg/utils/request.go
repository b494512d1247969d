package utils

import (
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func ParseIDParam(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, exceptions.ErrURLParamIDValidation(err, paramName)
	}
	return id, nil
}

func ParseIntParam(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, exceptions.ErrURLParamIDValidation(err, paramName)
	}
	return value, nil
}

// ParseDateQuery reads a yyyy-mm-dd query parameter, falling back to fallback when absent.
func ParseDateQuery(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	date, err := time.Parse(constvars.DateFormat, raw)
	if err != nil {
		return time.Time{}, exceptions.ErrInvalidFormat(err, key)
	}
	return date, nil
}
