package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evidware/case-api/ai"
	"github.com/evidware/case-api/config"
	"github.com/evidware/case-api/databases"
	"github.com/evidware/case-api/models"
)

// Chat exported for testing purposes
type Chat struct {
	DB        databases.CaseDatabase
	Responder *ai.Responder
}

type chatRequest struct {
	Question string `json:"question"`
}

// ChatHandler answers a free-text question about a case. Answers are not
// persisted; each turn stands alone.
func (c Chat) ChatHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		config.ErrorStatus("question is required", http.StatusBadRequest, w, ai.ErrEmptyQuestion)
		return
	}

	caseItem, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	answer, err := c.Responder.Ask(r.Context(), caseItem, req.Question)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyQuestion) {
			config.ErrorStatus("question is required", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to process question", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.ChatResponse{
		Answer:    answer,
		Question:  req.Question,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
