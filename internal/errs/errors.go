// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package errs defines the error taxonomy of the content pipeline and the
// helpers that apply it: retry policy and safe fallbacks.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for retry and HTTP mapping decisions.
type Kind string

// Error kinds
const (
	KindUnauthorized       Kind = "unauthorized"
	KindNotFound           Kind = "not_found"
	KindRateLimited        Kind = "rate_limited"
	KindServiceUnavailable Kind = "service_unavailable"
	KindNotion             Kind = "notion"
	KindCache              Kind = "cache"
	KindValidation         Kind = "validation"
)

// Error codes
const (
	CodeNotionUnauthorized = "NOTION_UNAUTHORIZED"
	CodeNotionNotFound     = "NOTION_NOT_FOUND"
	CodeNotionRateLimited  = "NOTION_RATE_LIMITED"
	CodeNotionUnavailable  = "NOTION_SERVICE_UNAVAILABLE"
	CodeNotionError        = "NOTION_ERROR"
	CodeCacheError         = "CACHE_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
)

var kindCodes = map[Kind]string{
	KindUnauthorized:       CodeNotionUnauthorized,
	KindNotFound:           CodeNotionNotFound,
	KindRateLimited:        CodeNotionRateLimited,
	KindServiceUnavailable: CodeNotionUnavailable,
	KindNotion:             CodeNotionError,
	KindCache:              CodeCacheError,
	KindValidation:         CodeValidationError,
}

var kindStatus = map[Kind]int{
	KindUnauthorized:       http.StatusUnauthorized,
	KindNotFound:           http.StatusNotFound,
	KindRateLimited:        http.StatusTooManyRequests,
	KindServiceUnavailable: http.StatusServiceUnavailable,
	KindNotion:             http.StatusBadGateway,
	KindCache:              http.StatusInternalServerError,
	KindValidation:         http.StatusBadRequest,
}

// BlogError is the base error of the pipeline.
type BlogError struct {
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	StatusCode int            `json:"status_code"`
	Details    map[string]any `json:"details,omitempty"`
	Kind       Kind           `json:"kind"`
	err        error
}

func (e *BlogError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *BlogError) Unwrap() error {
	return e.err
}

// Is matches BlogErrors by code, so sentinels work with errors.Is.
func (e *BlogError) Is(target error) bool {
	var t *BlogError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns the error with an extra detail attached.
func (e *BlogError) WithDetail(key string, value any) *BlogError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a BlogError of the given kind.
func New(kind Kind, message string, cause error) *BlogError {
	code, ok := kindCodes[kind]
	if !ok {
		code = CodeNotionError
	}
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &BlogError{
		Message:    message,
		Code:       code,
		StatusCode: status,
		Kind:       kind,
		err:        cause,
	}
}

// NotionError creates an error raised by the Notion adapter.
func NotionError(kind Kind, message string, cause error) *BlogError {
	return New(kind, message, cause)
}

// CacheError creates an error raised by a cache backend.
func CacheError(message string, cause error) *BlogError {
	return New(KindCache, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string) *BlogError {
	return New(KindValidation, message, nil)
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized       = &BlogError{Code: CodeNotionUnauthorized}
	ErrNotFound           = &BlogError{Code: CodeNotionNotFound}
	ErrRateLimited        = &BlogError{Code: CodeNotionRateLimited}
	ErrServiceUnavailable = &BlogError{Code: CodeNotionUnavailable}
	ErrCache              = &BlogError{Code: CodeCacheError}
)

// KindOf returns the kind of err, or "" if err is not a BlogError.
func KindOf(err error) Kind {
	var be *BlogError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	var be *BlogError
	if errors.As(err, &be) && be.StatusCode != 0 {
		return be.StatusCode
	}
	return http.StatusInternalServerError
}
