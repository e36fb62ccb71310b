package location

import "github.com/evidware/case-api/models"

// mapping pairs one dictionary key (an abbreviation or a city/state name)
// with its canonical form. The set is held as a slice because the substring
// heuristic scans entries in declaration order and the first hit wins.
type mapping struct {
	key       string
	canonical string
}

var locationMappings = []mapping{
	// US Cities
	{"nyc", "New York, NY, USA"},
	{"new york city", "New York, NY, USA"},
	{"new york", "New York, NY, USA"},
	{"la", "Los Angeles, CA, USA"},
	{"los angeles", "Los Angeles, CA, USA"},
	{"sf", "San Francisco, CA, USA"},
	{"san francisco", "San Francisco, CA, USA"},
	{"chi", "Chicago, IL, USA"},
	{"chicago", "Chicago, IL, USA"},
	{"dc", "Washington, DC, USA"},
	{"washington dc", "Washington, DC, USA"},
	{"washington d.c.", "Washington, DC, USA"},
	{"miami", "Miami, FL, USA"},
	{"boston", "Boston, MA, USA"},
	{"seattle", "Seattle, WA, USA"},
	{"philly", "Philadelphia, PA, USA"},
	{"philadelphia", "Philadelphia, PA, USA"},
	{"phoenix", "Phoenix, AZ, USA"},
	{"houston", "Houston, TX, USA"},
	{"dallas", "Dallas, TX, USA"},
	{"atlanta", "Atlanta, GA, USA"},
	{"denver", "Denver, CO, USA"},
	{"portland", "Portland, OR, USA"},
	// States
	{"california", "California, USA"},
	{"texas", "Texas, USA"},
	{"florida", "Florida, USA"},
	{"newyork", "New York, NY, USA"},
	// Unknown/Default
	{"unknown", "United States"},
}

// cityCoordinates is the fast path for coordinate resolution; entries match
// canonical location strings exactly. Anything missing here goes through the
// geocoder.
var cityCoordinates = map[string]models.Coordinates{
	"New York, NY, USA":      {Lat: 40.7128, Lng: -74.0060},
	"Los Angeles, CA, USA":   {Lat: 34.0522, Lng: -118.2437},
	"Chicago, IL, USA":       {Lat: 41.8781, Lng: -87.6298},
	"Houston, TX, USA":       {Lat: 29.7604, Lng: -95.3698},
	"Phoenix, AZ, USA":       {Lat: 33.4484, Lng: -112.0740},
	"Philadelphia, PA, USA":  {Lat: 39.9526, Lng: -75.1652},
	"San Antonio, TX, USA":   {Lat: 29.4241, Lng: -98.4936},
	"San Diego, CA, USA":     {Lat: 32.7157, Lng: -117.1611},
	"Dallas, TX, USA":        {Lat: 32.7767, Lng: -96.7970},
	"San Jose, CA, USA":      {Lat: 37.3382, Lng: -121.8863},
	"Austin, TX, USA":        {Lat: 30.2672, Lng: -97.7431},
	"Jacksonville, FL, USA":  {Lat: 30.3322, Lng: -81.6557},
	"San Francisco, CA, USA": {Lat: 37.7749, Lng: -122.4194},
	"Indianapolis, IN, USA":  {Lat: 39.7684, Lng: -86.1581},
	"Columbus, OH, USA":      {Lat: 39.9612, Lng: -82.9988},
	"Fort Worth, TX, USA":    {Lat: 32.7555, Lng: -97.3308},
	"Charlotte, NC, USA":     {Lat: 35.2271, Lng: -80.8431},
	"Seattle, WA, USA":       {Lat: 47.6062, Lng: -122.3321},
	"Denver, CO, USA":        {Lat: 39.7392, Lng: -104.9903},
	"Washington, DC, USA":    {Lat: 38.9072, Lng: -77.0369},
	"Boston, MA, USA":        {Lat: 42.3601, Lng: -71.0589},
	"Miami, FL, USA":         {Lat: 25.7617, Lng: -80.1918},
	"Atlanta, GA, USA":       {Lat: 33.7490, Lng: -84.3880},
	"Portland, OR, USA":      {Lat: 45.5152, Lng: -122.6784},
	"United States":          {Lat: models.DefaultLat, Lng: models.DefaultLng},
}
