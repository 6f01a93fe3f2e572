package controllers

import (
	"net/http"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/delivery/http/middleware"
	"grubio/internal/domain"
)

// principal returns the authenticated caller or writes 401 and returns false.
func principal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

// pathParam returns the named path value or writes 400 and returns false.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.PathValue(name)
	if v == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, name+" is required")
		return "", false
	}
	return v, true
}
