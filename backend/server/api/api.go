package api

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Categories is the fixed set of issue categories accepted at creation.
var Categories = []string{"Water", "Roads", "Landslides", "Electricity", "Sanitation", "Others"}

// Actor is the authenticated identity attached to every mutating call.
// It is supplied by the auth middleware; handlers and the db layer trust it.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// ReportDraft is the validated input for report creation.
type ReportDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Location    *Location `json:"location"`
	Tags        []string  `json:"tags"`
}

// AbuseEntry is one user's flag against a report.
type AbuseEntry struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	AfterImage  string   `json:"after_image,omitempty"`
	Location    Location `json:"location"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	AuthorID    string   `json:"author_id"`
	Username    string   `json:"username"`

	Upvotes   []string `json:"upvotes"`
	Downvotes []string `json:"downvotes"`

	AbuseReports []AbuseEntry `json:"reports"`
	ReportCount  int          `json:"report_count"`

	Tags []string `json:"tags"`

	CreatedAt    time.Time  `json:"created_at"`
	InProgressAt *time.Time `json:"in_progress_at,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// ReportSummary is the list/map shape: vote totals instead of full member sets.
type ReportSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	AuthorID      string    `json:"author_id"`
	Username      string    `json:"username"`
	Location      Location  `json:"location"`
	UpvoteCount   int       `json:"upvote_count"`
	DownvoteCount int       `json:"downvote_count"`
	ReportCount   int       `json:"report_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type StatusUpdateArgs struct {
	Status string `json:"status"`
}

type AbuseArgs struct {
	Reason string `json:"reason"`
}

type AfterImageArgs struct {
	Image string `json:"image"`
}

type AbuseInfoResponse struct {
	ReportCount      int          `json:"report_count"`
	Reports          []AbuseEntry `json:"reports"`
	ReportsThreshold int          `json:"reports_threshold"`
	ExceedsThreshold bool         `json:"exceeds_threshold"`
}

type FlaggedResponse struct {
	Posts []ReportSummary `json:"posts"`
	Total int             `json:"total"`
}

type StatsResponse struct {
	TotalReports int64 `json:"total_reports"`
	TotalUsers   int64 `json:"total_users"`
}

type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

type RegisterArgs struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PhoneNumber  string `json:"phone_number"`
	AadharNumber string `json:"aadhar_number"`
}

type LoginArgs struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type MapArgs struct {
	VPort  ViewPort `json:"vport"`
	Center Point    `json:"center"`
}

// MapResult is either a single pin (Count == 1) or an aggregated cluster.
type MapResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
	ReportID  string  `json:"report_id,omitempty"` // Ignored if Count > 1
	Status    string  `json:"status,omitempty"`    // Ignored if Count > 1
}
