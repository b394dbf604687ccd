package dto

// Insight priorities, from most to least urgent.
const (
	InsightPriorityHigh   = "high"
	InsightPriorityMedium = "medium"
	InsightPriorityLow    = "low"
)

// Insight is a single rule-derived observation shown on a dashboard.
type Insight struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// StudentInsightsResponse bundles the student dashboard insights.
type StudentInsightsResponse struct {
	PendingAssignments int       `json:"pending_assignments"`
	BonusEarned        float64   `json:"bonus_earned"`
	AverageMarks       float64   `json:"average_marks"`
	UnreadCount        int64     `json:"unread_count"`
	Insights           []Insight `json:"insights"`
	CacheHit           bool      `json:"cache_hit,omitempty"`
}

// FacultyInsightsResponse bundles the faculty dashboard insights.
type FacultyInsightsResponse struct {
	PendingComplaints     int       `json:"pending_complaints"`
	OldestPendingDays     int       `json:"oldest_pending_days"`
	ClassAverage          float64   `json:"class_average"`
	UnverifiedSubmissions int       `json:"unverified_submissions"`
	Insights              []Insight `json:"insights"`
	CacheHit              bool      `json:"cache_hit,omitempty"`
}

// AdminInsightsResponse bundles the admin dashboard insights.
type AdminInsightsResponse struct {
	TotalStudents        int64     `json:"total_students"`
	TotalComplaints      int64     `json:"total_complaints"`
	ResolvedComplaints   int64     `json:"resolved_complaints"`
	ResolutionRate       float64   `json:"resolution_rate"`
	ActiveAssignments    int64     `json:"active_assignments"`
	TotalSubmissions     int64     `json:"total_submissions"`
	Insights             []Insight `json:"insights"`
	CacheHit             bool      `json:"cache_hit,omitempty"`
}
