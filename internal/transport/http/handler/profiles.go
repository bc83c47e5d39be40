package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/profile"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/transport/http/middleware"
)

// ProfileHandler handles the /api/profile endpoints.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Edit accepts either a JSON body or a multipart form with an optional
// profileImage part (jpeg/png, max 2 MB).
func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "userId")
	if claims.UserID != targetID {
		writeError(w, http.StatusForbidden, "cannot edit another user's profile")
		return
	}

	var req domain.UpdateProfileRequest
	var image *profile.ImageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(profile.MaxImageSize); err != nil {
			writeError(w, http.StatusBadRequest, "File size should be under 2 MB.")
			return
		}
		formInto(r, &req)
		file, header, err := r.FormFile("profileImage")
		switch {
		case err == nil:
			defer file.Close()
			if header.Size > profile.MaxImageSize {
				writeError(w, http.StatusBadRequest, "File size should be under 2 MB.")
				return
			}
			image = &profile.ImageUpload{Filename: header.Filename, Data: file}
		case errors.Is(err, http.ErrMissingFile):
			// no image part, fields only
		default:
			writeError(w, http.StatusBadRequest, "invalid file upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := h.svc.Update(r.Context(), targetID, req, image); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Profile updated successfully"})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	if len(profiles) == 0 {
		writeError(w, http.StatusNotFound, "No profiles found")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// formInto copies the multipart form values into the update request. Only
// fields present in the form end up non-nil.
func formInto(r *http.Request, req *domain.UpdateProfileRequest) {
	set := func(dst **string, key string) {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			*dst = &v
		}
	}
	set(&req.Name, "name")
	set(&req.Role, "role")
	set(&req.ContactInfo, "contactInfo")
	set(&req.Location, "location")
	set(&req.Skills, "skills")
	set(&req.ExperienceYears, "experienceYears")
	set(&req.ServicesOffered, "servicesOffered")
	set(&req.ServiceArea, "serviceArea")
	set(&req.Availability, "availability")
	set(&req.ServiceNeeds, "serviceNeeds")
	set(&req.PreferredServiceTypes, "preferredServiceTypes")
	set(&req.LocationPreferences, "locationPreferences")
}
