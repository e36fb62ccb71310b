package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Severity levels a case can carry.
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Status values a case can carry.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusResolved = "Resolved"
)

// Geographic center of the continental United States, used whenever no
// better location is known. Coordinates are never stored as null.
const (
	DefaultLat = 39.8283
	DefaultLng = -98.5795
)

// Coordinates holds a lat/lng pair
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// DefaultCoordinates returns the center-of-USA fallback pair
func DefaultCoordinates() Coordinates {
	return Coordinates{Lat: DefaultLat, Lng: DefaultLng}
}

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID                  primitive.ObjectID `json:"_id" bson:"_id"`
	IncidentTitle       string             `json:"incidentTitle" bson:"incidentTitle"`
	Description         string             `json:"description" bson:"description"`
	LocationDescription string             `json:"locationDescription" bson:"locationDescription"`
	NormalizedLocation  string             `json:"normalizedLocation" bson:"normalizedLocation"`
	LocationCoordinates Coordinates        `json:"locationCoordinates" bson:"locationCoordinates"`
	DateReported        primitive.DateTime `json:"dateReported" bson:"dateReported"`
	Severity            string             `json:"severity" bson:"severity"`
	Status              string             `json:"status" bson:"status"`
	StatusReason        string             `json:"statusReason" bson:"statusReason"`
	Images              []CaseImage        `json:"images" bson:"images"`
	AIAnalysis          *AIAnalysis        `json:"aiAnalysis,omitempty" bson:"aiAnalysis,omitempty"`
	CreatedBy           string             `json:"createdBy" bson:"createdBy"`
	ModifiedBy          string             `json:"modifiedBy" bson:"modifiedBy"`
	CreatedAt           primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt           primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// CaseImage holds one hosted image attached to a case. Ordering in
// Case.Images reflects upload order.
type CaseImage struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	PublicID     string             `json:"publicId" bson:"publicId"`
	URL          string             `json:"url" bson:"url"`
	SecureURL    string             `json:"secureUrl" bson:"secureUrl"`
	OriginalName string             `json:"originalName" bson:"originalName"`
	Filename     string             `json:"filename" bson:"filename"` // Keep for backward compatibility
	Data         []byte             `json:"data,omitempty" bson:"data,omitempty"`
	ContentType  string             `json:"contentType,omitempty" bson:"contentType,omitempty"`
	UploadedAt   primitive.DateTime `json:"uploadedAt" bson:"uploadedAt"`
}

// AIAnalysis holds the parsed output of a vision analysis run. It is
// replaced wholesale on re-analysis, never merged.
type AIAnalysis struct {
	Summary    string             `json:"summary" bson:"summary"`
	Insights   []string           `json:"insights" bson:"insights"`
	AnalyzedAt primitive.DateTime `json:"analyzedAt" bson:"analyzedAt"`
}

// ValidSeverity reports whether s is one of the severity enum values
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the status enum values
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusResolved:
		return true
	}
	return false
}
