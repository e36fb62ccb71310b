package models

// HealthCheckResponse returns the health check response
type HealthCheckResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body for mutations that only confirm success
type MessageResponse struct {
	Message string `json:"message"`
}

// AnalyzeResponse is the body for a successful analysis run
type AnalyzeResponse struct {
	Message  string     `json:"message"`
	Analysis AIAnalysis `json:"analysis"`
}

// ChatResponse is the body for a successful chat turn. Nothing is persisted;
// the caller owns any transcript.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Question  string `json:"question"`
	Timestamp string `json:"timestamp"`
}

// NormalizeLocationResponse is the body for the location normalization
// endpoint. The endpoint never returns a non-200 in normal operation.
type NormalizeLocationResponse struct {
	NormalizedLocation string      `json:"normalizedLocation"`
	Coordinates        Coordinates `json:"coordinates"`
	Confidence         string      `json:"confidence"`
	Reasoning          string      `json:"reasoning"`
}

// UploadImagesResponse is the body for a successful image upload
type UploadImagesResponse struct {
	Message string      `json:"message"`
	Images  []CaseImage `json:"images"`
}
