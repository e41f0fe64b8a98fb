package models

import "time"

type FloorType string

const (
	FloorParquet  FloorType = "parquet"
	FloorLaminate FloorType = "laminate"
	FloorTiles    FloorType = "tiles"
	FloorLinoleum FloorType = "linoleum"
	FloorCarpet   FloorType = "carpet"
	FloorConcrete FloorType = "concrete"
	FloorUnknown  FloorType = "unknown"
)

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionUnknown   Condition = "unknown"
)

// Rank orders conditions from worst (unknown=0) to best (excellent=4).
func (c Condition) Rank() int {
	switch c {
	case ConditionExcellent:
		return 4
	case ConditionGood:
		return 3
	case ConditionFair:
		return 2
	case ConditionPoor:
		return 1
	default:
		return 0
	}
}

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Rank orders complexities low=1 < medium=2 < high=3. Unrecognized values rank as medium.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityLow:
		return 1
	case ComplexityHigh:
		return 3
	default:
		return 2
	}
}

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

// ChatMessage is one parsed transcript entry. Timestamp is kept verbatim.
type ChatMessage struct {
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	IsMedia   bool   `json:"is_media"`
	IsSystem  bool   `json:"is_system"`
}

type MediaFile struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Kind        MediaKind `json:"kind"`
	Extension   string    `json:"extension"`
}

type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	DistanceKm  float64 `json:"distance_km"`
}

type ClientInfo struct {
	Name                string    `json:"name,omitempty"`
	MessageCount        int       `json:"message_count"`
	Phone               string    `json:"phone,omitempty"`
	Address             string    `json:"address,omitempty"`
	ProblemDescriptions []string  `json:"problem_descriptions"`
	Location            *Location `json:"location,omitempty"`
}

type Damage struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// FloorAssessment is used both for a single image and for the aggregated project.
type FloorAssessment struct {
	Success         bool       `json:"success"`
	Error           string     `json:"error,omitempty"`
	ImageName       string     `json:"image_name,omitempty"`
	FloorType       FloorType  `json:"floor_type"`
	FloorTypeHebrew string     `json:"floor_type_hebrew,omitempty"`
	Condition       Condition  `json:"condition"`
	ConditionNote   string     `json:"condition_description,omitempty"`
	Damages         []Damage   `json:"damages"`
	AreaEstimateSqm float64    `json:"area_estimate_sqm"`
	RoomType        string     `json:"room_type,omitempty"`
	Recommendations []string   `json:"recommendations"`
	WorkComplexity  Complexity `json:"work_complexity"`
	Urgency         string     `json:"urgency,omitempty"`
	Duration        string     `json:"estimated_duration,omitempty"`
	SpecialNotes    string     `json:"special_notes,omitempty"`
	Confidence      int        `json:"confidence_level,omitempty"`
	ImagesAnalyzed  int        `json:"images_analyzed"`
	Context         string     `json:"context,omitempty"`
	RawResponse     string     `json:"raw_response,omitempty"`

	Individual []FloorAssessment `json:"individual_analyses,omitempty"`
}

type CostBreakdown struct {
	BaseWork             int `json:"base_work"`
	ConditionAdjustment  int `json:"condition_adjustment"`
	ComplexityAdjustment int `json:"complexity_adjustment"`
	DamageAdjustment     int `json:"damage_adjustment"`
}

type CostEstimate struct {
	BasePricePerSqm      float64       `json:"base_price_per_sqm"`
	Area                 float64       `json:"area"`
	BaseCost             int           `json:"base_cost"`
	ConditionMultiplier  float64       `json:"condition_multiplier"`
	ComplexityMultiplier float64       `json:"complexity_multiplier"`
	DamageMultiplier     float64       `json:"damage_multiplier"`
	TotalMultiplier      float64       `json:"total_multiplier"`
	MinCost              int           `json:"min_cost"`
	MaxCost              int           `json:"max_cost"`
	RecommendedCost      int           `json:"recommended_cost"`
	Currency             string        `json:"currency"`
	Adjusted             bool          `json:"adjusted,omitempty"`
	Breakdown            CostBreakdown `json:"breakdown"`
}

type Timeline struct {
	EstimatedDays int    `json:"estimated_days"`
	MinDays       int    `json:"min_days"`
	MaxDays       int    `json:"max_days"`
	WorkType      string `json:"work_type"`
}

type Contact struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Business    string `json:"business"`
	Hours       string `json:"hours,omitempty"`
	ServiceArea string `json:"service_area,omitempty"`
}

// Analysis is the per-session result the transport layer keeps around for follow-up requests.
type Analysis struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	Source     string          `json:"source"`
	Assessment FloorAssessment `json:"assessment"`
	Cost       CostEstimate    `json:"cost"`
	Timeline   Timeline        `json:"timeline"`
	Client     ClientInfo      `json:"client"`
	ArchiveKey string          `json:"archive_key,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
