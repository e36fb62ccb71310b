package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evidware/case-api/ai"
	"github.com/evidware/case-api/api/handlers"
	"github.com/evidware/case-api/databases/mocks"
	"github.com/evidware/case-api/models"
)

// stubModel satisfies the chat-completion surface the ai package consumes
type stubModel struct {
	lastReq openai.ChatCompletionRequest
	answer  string
	err     error
}

func (s *stubModel) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.answer}},
		},
	}, nil
}

func TestAnalyzeCaseHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/ai/analyze/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "1234"})

	a := handlers.Analysis{DB: mocks.NewCaseDatabase(t)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnalyzeCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeCaseHandlerCaseNotFound(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mongo: no documents in result"))

	a := handlers.Analysis{DB: db, Analyzer: ai.NewAnalyzer(&stubModel{}, "gpt-4o")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnalyzeCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnalyzeCaseHandlerNoImages(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{IncidentTitle: "Warehouse break-in"}, nil)

	a := handlers.Analysis{DB: db, Analyzer: ai.NewAnalyzer(&stubModel{}, "gpt-4o")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnalyzeCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no images found to analyze")
}

func TestAnalyzeCaseHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	var update bson.M
	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		IncidentTitle: "Warehouse break-in",
		Images:        []models.CaseImage{{SecureURL: "https://img.example/one.jpg"}},
	}, nil)
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			update = args.Get(2).(bson.M)
		})

	model := &stubModel{answer: "Image 1: A cut padlock on the gate."}
	a := handlers.Analysis{DB: db, Analyzer: ai.NewAnalyzer(model, "gpt-4o")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnalyzeCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Case analyzed successfully")
	assert.Contains(t, rr.Body.String(), "A cut padlock on the gate.")

	set := update["$set"].(bson.M)
	assert.NotNil(t, set["aiAnalysis"])
	assert.NotNil(t, set["updatedAt"])
}

func TestAnalyzeCaseHandlerUpstreamFailure(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		Images: []models.CaseImage{{SecureURL: "https://img.example/one.jpg"}},
	}, nil)

	model := &stubModel{err: errors.New("rate limited")}
	a := handlers.Analysis{DB: db, Analyzer: ai.NewAnalyzer(model, "gpt-4o")}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.AnalyzeCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetAnalysisHandlerNoAnalysis(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{IncidentTitle: "Warehouse break-in"}, nil)

	a := handlers.Analysis{DB: db}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.GetAnalysisHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no AI analysis available")
}

func TestGetAnalysisHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/ai/analyze/608cafe595eb9dc05379b7f4", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "608cafe595eb9dc05379b7f4"})

	db := mocks.NewCaseDatabase(t)
	db.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		AIAnalysis: &models.AIAnalysis{
			Summary:    "A cut padlock on the gate.",
			Insights:   []string{"**Image 1 Observations:** A cut padlock on the gate."},
			AnalyzedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}, nil)

	a := handlers.Analysis{DB: db}

	rr := httptest.NewRecorder()
	http.HandlerFunc(a.GetAnalysisHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A cut padlock on the gate.")
}
