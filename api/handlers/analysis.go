package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evidware/case-api/ai"
	"github.com/evidware/case-api/config"
	"github.com/evidware/case-api/databases"
	"github.com/evidware/case-api/models"
)

// Analysis exported for testing purposes
type Analysis struct {
	DB       databases.CaseDatabase
	Analyzer *ai.Analyzer
}

// AnalyzeCaseHandler runs a vision analysis over every image on a case and
// stores the parsed result on the record, replacing any previous analysis
func (a Analysis) AnalyzeCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	caseItem, err := a.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	analysis, err := a.Analyzer.Analyze(r.Context(), caseItem)
	if err != nil {
		if errors.Is(err, ai.ErrNoImages) {
			config.ErrorStatus("no images found to analyze, please upload images first", http.StatusBadRequest, w, err)
			return
		}
		config.ErrorStatus("failed to analyze case", http.StatusInternalServerError, w, err)
		return
	}

	update := bson.M{"$set": bson.M{
		"aiAnalysis": analysis,
		"updatedAt":  primitive.NewDateTimeFromTime(time.Now()),
	}}
	if err := a.DB.UpdateOne(context.TODO(), bson.M{"_id": cID}, update); err != nil {
		config.ErrorStatus("failed to save analysis", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.AnalyzeResponse{Message: "Case analyzed successfully", Analysis: *analysis})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// GetAnalysisHandler returns the stored analysis for a case
func (a Analysis) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	caseItem, err := a.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	if caseItem.AIAnalysis == nil {
		config.ErrorStatus("no AI analysis available for this case", http.StatusNotFound, w, errors.New("aiAnalysis is not set"))
		return
	}

	b, err := json.Marshal(caseItem.AIAnalysis)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
