package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/evidware/case-api/config"
	"github.com/evidware/case-api/databases"
	"github.com/evidware/case-api/location"
	"github.com/evidware/case-api/models"
	"github.com/evidware/case-api/storage"
)

// Upload limit per image file.
const maxUploadSize = 50 << 20

// Case exported for testing purposes
type Case struct {
	DB         databases.CaseDatabase
	Normalizer *location.Normalizer
	Images     storage.ImageStore
}

// CasesHandler returns all cases, newest first, optionally filtered by
// status, severity and a free-text search
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		filter["severity"] = severity
	}
	if search := r.URL.Query().Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"incidentTitle": primitive.Regex{Pattern: search, Options: "i"}},
			{"description": primitive.Regex{Pattern: search, Options: "i"}},
			{"locationDescription": primitive.Regex{Pattern: search, Options: "i"}},
		}
	}

	dbResp, err := c.DB.Find(context.TODO(), filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateCaseHandler creates a new case with defaults applied to every field
// the caller omitted
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var caseItem models.Case
	if err := json.NewDecoder(r.Body).Decode(&caseItem); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(caseItem.IncidentTitle) == "" {
		config.ErrorStatus("incidentTitle is required", http.StatusBadRequest, w, errors.New("missing incidentTitle"))
		return
	}
	if err := applyCaseDefaults(&caseItem); err != nil {
		config.ErrorStatus("failed to validate case", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	caseItem.ID = primitive.NewObjectID()
	caseItem.Images = []models.CaseImage{}
	caseItem.AIAnalysis = nil
	caseItem.CreatedAt = now
	caseItem.UpdatedAt = now
	if caseItem.DateReported == 0 {
		caseItem.DateReported = now
	}

	c.normalizeLocation(r.Context(), &caseItem)

	if _, err := c.DB.InsertOne(context.TODO(), caseItem); err != nil {
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(caseItem)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateCaseHandler replaces the editable fields of a case. Images, analysis
// and the audit trail of creation are never touched here.
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var caseItem models.Case
	if err := json.NewDecoder(r.Body).Decode(&caseItem); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(caseItem.IncidentTitle) == "" {
		config.ErrorStatus("incidentTitle is required", http.StatusBadRequest, w, errors.New("missing incidentTitle"))
		return
	}
	if err := applyCaseDefaults(&caseItem); err != nil {
		config.ErrorStatus("failed to validate case", http.StatusBadRequest, w, err)
		return
	}

	c.normalizeLocation(r.Context(), &caseItem)

	update := bson.M{"$set": bson.M{
		"incidentTitle":       caseItem.IncidentTitle,
		"description":         caseItem.Description,
		"locationDescription": caseItem.LocationDescription,
		"normalizedLocation":  caseItem.NormalizedLocation,
		"locationCoordinates": caseItem.LocationCoordinates,
		"dateReported":        caseItem.DateReported,
		"severity":            caseItem.Severity,
		"status":              caseItem.Status,
		"statusReason":        caseItem.StatusReason,
		"modifiedBy":          caseItem.ModifiedBy,
		"updatedAt":           primitive.NewDateTimeFromTime(time.Now()),
	}}

	dbResp, err := c.DB.FindOneAndUpdate(context.TODO(), bson.M{"_id": cID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		config.ErrorStatus("failed to update case", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteCaseHandler deletes a case and makes a best-effort attempt to remove
// its hosted images first
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	for _, image := range dbResp.Images {
		c.destroyImage(r.Context(), image.PublicID)
	}

	if err := c.DB.DeleteOne(context.TODO(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to delete case", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "Case deleted successfully"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UploadImagesHandler accepts one or more multipart image files, processes
// and hosts each one, and appends the resulting records to the case
func (c Case) UploadImagesHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		config.ErrorStatus("file upload error", http.StatusBadRequest, w, err)
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		config.ErrorStatus("no image files provided", http.StatusBadRequest, w, errors.New("missing images field"))
		return
	}

	if _, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	if c.Images == nil {
		config.ErrorStatus("image storage is not configured", http.StatusInternalServerError, w, errors.New("missing cloudinary credentials"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	uploaded := make([]models.CaseImage, 0, len(files))
	for _, header := range files {
		if header.Size > maxUploadSize {
			config.ErrorStatus("file too large, maximum file size is 50MB", http.StatusBadRequest, w, fmt.Errorf("%s is %d bytes", header.Filename, header.Size))
			return
		}
		if !allowedImageFile(header.Filename, header.Header.Get("Content-Type")) {
			config.ErrorStatus("only image files are allowed", http.StatusBadRequest, w, fmt.Errorf("rejected %s", header.Filename))
			return
		}

		file, err := header.Open()
		if err != nil {
			config.ErrorStatus("failed to read uploaded file", http.StatusInternalServerError, w, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			config.ErrorStatus("failed to read uploaded file", http.StatusInternalServerError, w, err)
			return
		}

		processed, err := storage.ProcessImage(data)
		if err != nil {
			config.ErrorStatus(fmt.Sprintf("failed to upload %s", header.Filename), http.StatusInternalServerError, w, err)
			return
		}

		res, err := c.Images.Upload(r.Context(), processed, fmt.Sprintf("fbi-cases/case-%s", caseID))
		if err != nil {
			config.ErrorStatus(fmt.Sprintf("failed to upload %s", header.Filename), http.StatusInternalServerError, w, err)
			return
		}
		zap.S().Infow("image uploaded", "case_id", caseID, "public_id", res.PublicID)

		uploaded = append(uploaded, models.CaseImage{
			ID:           primitive.NewObjectID(),
			PublicID:     res.PublicID,
			URL:          res.URL,
			SecureURL:    res.SecureURL,
			OriginalName: header.Filename,
			Filename:     filepath.Base(res.PublicID),
			UploadedAt:   now,
		})
	}

	update := bson.M{
		"$push": bson.M{"images": bson.M{"$each": uploaded}},
		"$set":  bson.M{"updatedAt": now},
	}
	if err := c.DB.UpdateOne(context.TODO(), bson.M{"_id": cID}, update); err != nil {
		config.ErrorStatus("failed to save uploaded images", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(models.UploadImagesResponse{Message: "Images uploaded successfully", Images: uploaded})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteImageHandler removes a single image from a case without reordering
// the remaining images
func (c Case) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	imageID := mux.Vars(r)["image_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	imgID, err := primitive.ObjectIDFromHex(imageID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	var image *models.CaseImage
	for i := range dbResp.Images {
		if dbResp.Images[i].ID == imgID {
			image = &dbResp.Images[i]
			break
		}
	}
	if image == nil {
		config.ErrorStatus("image not found", http.StatusNotFound, w, fmt.Errorf("no image %s on case %s", imageID, caseID))
		return
	}

	c.destroyImage(r.Context(), image.PublicID)

	update := bson.M{
		"$pull": bson.M{"images": bson.M{"_id": imgID}},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	}
	if err := c.DB.UpdateOne(context.TODO(), bson.M{"_id": cID}, update); err != nil {
		config.ErrorStatus("failed to delete image", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.MessageResponse{Message: "Image deleted successfully"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// normalizeLocation fills in normalizedLocation and coordinates server-side
// when the caller typed a location but did not normalize it client-side
func (c Case) normalizeLocation(ctx context.Context, caseItem *models.Case) {
	if caseItem.NormalizedLocation == "" && c.Normalizer != nil {
		res := c.Normalizer.Normalize(ctx, caseItem.LocationDescription)
		caseItem.NormalizedLocation = res.NormalizedLocation
		caseItem.LocationCoordinates = res.Coordinates
	}
	if caseItem.LocationCoordinates == (models.Coordinates{}) {
		caseItem.LocationCoordinates = models.DefaultCoordinates()
	}
}

// destroyImage removes a hosted image, logging and continuing on failure so
// record deletion is never blocked by the image host
func (c Case) destroyImage(ctx context.Context, publicID string) {
	if c.Images == nil || publicID == "" {
		return
	}
	if err := c.Images.Destroy(ctx, publicID); err != nil {
		zap.S().Warnf("failed to delete image from cloudinary: %v", err)
	}
}

func applyCaseDefaults(caseItem *models.Case) error {
	if caseItem.Severity == "" {
		caseItem.Severity = models.SeverityMedium
	}
	if caseItem.Status == "" {
		caseItem.Status = models.StatusActive
	}
	if !models.ValidSeverity(caseItem.Severity) {
		return fmt.Errorf("invalid severity %q", caseItem.Severity)
	}
	if !models.ValidStatus(caseItem.Status) {
		return fmt.Errorf("invalid status %q", caseItem.Status)
	}
	if caseItem.CreatedBy == "" {
		caseItem.CreatedBy = "System"
	}
	if caseItem.ModifiedBy == "" {
		caseItem.ModifiedBy = "System"
	}
	return nil
}

func allowedImageFile(filename, contentType string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpeg", ".jpg", ".png", ".gif", ".webp":
	default:
		return false
	}
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
