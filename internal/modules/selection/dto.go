package selection

import "time"

// PathOutcome is the per-path result of a RunSelection pass.
type PathOutcome struct {
	PathID         uint `json:"path_id"`
	Quota          int  `json:"quota"`
	Accepted       int  `json:"accepted"`
	Rejected       int  `json:"rejected"`
	RemainingQuota int  `json:"remaining_quota"`
}

// RunSelectionResponse is the result of one RunSelection call.
type RunSelectionResponse struct {
	PeriodID     uint          `json:"period_id"`
	Paths        []PathOutcome `json:"paths"`
	TotalAccepted int          `json:"total_accepted"`
	TotalRejected int          `json:"total_rejected"`
}

// CalculateScoresResponse reports how many registrations were scored.
type CalculateScoresResponse struct {
	PeriodID uint `json:"period_id"`
	Scored   int  `json:"scored"`
}

// RankingEntry is one row of a path's ranking table.
type RankingEntry struct {
	RegistrationID     uint     `json:"registration_id"`
	RegistrationNumber *string  `json:"registration_number"`
	StudentName        string   `json:"student_name"`
	SelectionScore     *float64 `json:"selection_score"`
	Ranking            *int     `json:"ranking"`
	Status             string   `json:"status"`
}

// UpdateRankingsResponse reports how many paths were re-ranked.
type UpdateRankingsResponse struct {
	PeriodID uint `json:"period_id"`
	Paths    int  `json:"paths"`
}

// AnnounceResponse is the result of an Announce call.
type AnnounceResponse struct {
	PeriodID         uint       `json:"period_id"`
	AnnouncementDate *time.Time `json:"announcement_date"`
	Notified         int        `json:"notified"`
}

// CheckResultRequest is the public, anonymous lookup request.
type CheckResultRequest struct {
	RegistrationNumber string `json:"registration_number"`
	NISN               string `json:"nisn"`
}

// CheckResultResponse is the single record CheckResult ever exposes —
// never the full registration.
type CheckResultResponse struct {
	RegistrationNumber   string     `json:"registration_number"`
	StudentName          string     `json:"student_name"`
	NISN                 string     `json:"nisn"`
	PathName             string     `json:"path_name"`
	SelectionScore       *float64   `json:"selection_score"`
	Ranking              *int       `json:"ranking"`
	Status               string     `json:"status"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	AnnouncementDate     *time.Time `json:"announcement_date"`
	ReenrollmentDeadline time.Time  `json:"reenrollment_deadline"`
}

// PathRankings is one path's ranking table, as returned by the
// per-period rankings endpoint.
type PathRankings struct {
	PathID   uint           `json:"path_id"`
	PathName string         `json:"path_name"`
	Entries  []RankingEntry `json:"entries"`
}

// StatsResponse is a per-path selection rollup for a period.
type StatsResponse struct {
	PeriodID uint          `json:"period_id"`
	Paths    []PathOutcome `json:"paths"`
}
