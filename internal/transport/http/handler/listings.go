package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/listing"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/validate"
)

// ListingHandler handles the /api/service endpoints.
type ListingHandler struct {
	svc listing.Service
}

func NewListingHandler(svc listing.Service) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	l, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message   string `json:"message"`
		ServiceID string `json:"serviceId"`
	}{Message: "Service created successfully!", ServiceID: l.ListingID})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Get(r.Context(), chi.URLParam(r, "serviceId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) ListByProvider(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.ListByProvider(r.Context(), chi.URLParam(r, "providerId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.svc.Update(r.Context(), chi.URLParam(r, "serviceId"), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Service updated successfully"})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "serviceId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Service deleted successfully"})
}
