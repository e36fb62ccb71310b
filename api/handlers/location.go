package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evidware/case-api/config"
	"github.com/evidware/case-api/location"
	"github.com/evidware/case-api/models"
)

// Location exported for testing purposes
type Location struct {
	Normalizer *location.Normalizer
}

type normalizeLocationRequest struct {
	Location string `json:"location"`
}

// NormalizeLocationHandler turns free-text location input into a canonical
// place name with coordinates. Normalization always produces a usable
// result, so this endpoint answers 200 for every well-formed request.
func (l Location) NormalizeLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req normalizeLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	res := l.Normalizer.Normalize(r.Context(), req.Location)

	b, err := json.Marshal(models.NormalizeLocationResponse{
		NormalizedLocation: res.NormalizedLocation,
		Coordinates:        res.Coordinates,
		Confidence:         res.Confidence,
		Reasoning:          res.Reasoning,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
