package api

import "notes-api/domain"

const noteBodyMaxSize = 64 * 1024 // 64 KiB

// GET / response body
type healthResponse struct {
	Message string `json:"message"`
}

// Body for 404s and other single-message failures.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Body for 422s; one entry per failed check.
type validationResponse struct {
	Detail []domain.FieldError `json:"detail"`
}
