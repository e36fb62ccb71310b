package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/evidware/case-api/ai"
	"github.com/evidware/case-api/api"
	"github.com/evidware/case-api/config"
	"github.com/evidware/case-api/databases"
	"github.com/evidware/case-api/location"
	"github.com/evidware/case-api/models"
	"github.com/evidware/case-api/storage"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper

	analyzer   *ai.Analyzer
	responder  *ai.Responder
	normalizer *location.Normalizer
	images     storage.ImageStore
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	c := Case{DB: databases.NewCaseDatabase(a.dbHelper), Normalizer: a.normalizer, Images: a.images}
	analysis := Analysis{DB: databases.NewCaseDatabase(a.dbHelper), Analyzer: a.analyzer}
	chat := Chat{DB: databases.NewCaseDatabase(a.dbHelper), Responder: a.responder}
	loc := Location{Normalizer: a.normalizer}
	cloudinaryHandler := CloudinaryHandler{Config: a.Config}

	apiCreate := r.PathPrefix("/api").Subrouter()

	// healthchex
	apiCreate.HandleFunc("/health", healthCheckHandler)

	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", api.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}", api.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/cases/{case_id}/images", api.Middleware(http.HandlerFunc(c.UploadImagesHandler))).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/images/{image_id}", api.Middleware(http.HandlerFunc(c.DeleteImageHandler))).Methods("DELETE")

	apiCreate.Handle("/ai/analyze/{case_id}", api.Middleware(http.HandlerFunc(analysis.AnalyzeCaseHandler))).Methods("POST")
	apiCreate.Handle("/ai/analyze/{case_id}", api.Middleware(http.HandlerFunc(analysis.GetAnalysisHandler))).Methods("GET")
	apiCreate.Handle("/ai/chat/{case_id}", api.Middleware(http.HandlerFunc(chat.ChatHandler))).Methods("POST")
	apiCreate.Handle("/ai/normalize-location", api.Middleware(http.HandlerFunc(loc.NormalizeLocationHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("case-api has connected to the database")

	openaiClient := openai.NewClient(a.Config.OpenAIKey)
	if a.Config.OpenAIKey == "" {
		zap.S().Warn("openai api key is not set, analysis and chat will fail")
	}

	geocoder := location.NewNominatimGeocoder(a.Config.NominatimBaseURL)
	a.normalizer = location.NewNormalizer(openaiClient, a.Config.TextModel, geocoder)
	a.analyzer = ai.NewAnalyzer(openaiClient, a.Config.VisionModel)
	a.responder = ai.NewResponder(openaiClient, a.Config.VisionModel, a.Config.TextModel)

	if a.Config.CloudinaryCloudName != "" {
		a.images, err = storage.NewCloudinaryStore(a.Config.CloudinaryCloudName, a.Config.CloudinaryAPIKey, a.Config.CloudinaryAPISecret)
		if err != nil {
			zap.S().With(err).Error("failed to configure cloudinary")
			return err
		}
	} else {
		zap.S().Warn("cloudinary credentials not found, image uploads will fail")
	}

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Status:  "ok",
		Message: "Backend is running",
	})
	_, _ = io.WriteString(w, string(b))
}
