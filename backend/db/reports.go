package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"civicfix/backend/geofence"
	"civicfix/backend/server/api"
	"civicfix/common"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

const reportColumns = `r.id, r.title, r.description, r.image, r.after_image,
	  r.latitude, r.longitude, r.address, r.category, r.status, r.author_id,
	  r.tags, r.report_count, r.created_at, r.in_progress_at, r.resolved_at,
	  COALESCE(u.username, 'Anonymous User')`

const summaryColumns = `r.id, r.title, r.category, r.status, r.author_id,
	  COALESCE(u.username, 'Anonymous User'),
	  r.latitude, r.longitude, r.address, r.report_count, r.created_at,
	  (SELECT COUNT(*) FROM report_votes v WHERE v.report_id = r.id AND v.vote = 'up'),
	  (SELECT COUNT(*) FROM report_votes v WHERE v.report_id = r.id AND v.vote = 'down')`

func validCategory(c string) bool {
	for _, known := range api.Categories {
		if c == known {
			return true
		}
	}
	return false
}

func validateDraft(d *api.ReportDraft) error {
	switch {
	case d.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case d.Description == "":
		return fmt.Errorf("%w: description is required", ErrValidation)
	case d.Image == "":
		return fmt.Errorf("%w: image is required", ErrValidation)
	case d.Location == nil:
		return fmt.Errorf("%w: location is required", ErrValidation)
	case !validCategory(d.Category):
		return fmt.Errorf("%w: unknown category %q", ErrValidation, d.Category)
	}
	return nil
}

// CreateReport persists a new report with status pending after the draft
// passes validation and the geofence admission check. Nothing is written
// when either check fails.
func CreateReport(dbc *sql.DB, d *api.ReportDraft, author api.Actor, fence *geofence.Fence) (*api.Report, error) {
	if err := validateDraft(d); err != nil {
		return nil, err
	}
	if err := fence.Admit(d.Location.Latitude, d.Location.Longitude); err != nil {
		return nil, err
	}

	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	id := uuid.NewString()
	result, err := dbc.Exec(`INSERT
	  INTO reports (id, title, description, image, latitude, longitude, address, category, author_id, tags)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, d.Title, d.Description, d.Image,
		d.Location.Latitude, d.Location.Longitude, d.Location.Address,
		d.Category, author.ID, string(tags))
	common.LogResult("createReport", result, err, true)
	if err != nil {
		log.Errorf("Error inserting report: %v", err)
		return nil, err
	}
	return GetReport(dbc, id)
}

// GetReport assembles the full report record, vote member sets included.
func GetReport(dbc *sql.DB, id string) (*api.Report, error) {
	r := &api.Report{ID: id}
	var (
		afterImage sql.NullString
		address    sql.NullString
		tags       sql.NullString
		inProgress sql.NullTime
		resolved   sql.NullTime
	)
	err := dbc.QueryRow(`SELECT `+reportColumns+`
	  FROM reports r
	  LEFT JOIN users u ON u.id = r.author_id
	  WHERE r.id = ?`, id).Scan(
		&r.ID, &r.Title, &r.Description, &r.Image, &afterImage,
		&r.Location.Latitude, &r.Location.Longitude, &address,
		&r.Category, &r.Status, &r.AuthorID,
		&tags, &r.ReportCount, &r.CreatedAt, &inProgress, &resolved,
		&r.Username)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		log.Errorf("Error reading report %s: %v", id, err)
		return nil, err
	}
	r.AfterImage = afterImage.String
	r.Location.Address = address.String
	if inProgress.Valid {
		t := inProgress.Time
		r.InProgressAt = &t
	}
	if resolved.Valid {
		t := resolved.Time
		r.ResolvedAt = &t
	}
	r.Tags = []string{}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &r.Tags); err != nil {
			log.Warnf("Malformed tags on report %s: %v", id, err)
			r.Tags = []string{}
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
	}

	if r.Upvotes, r.Downvotes, err = loadVotes(dbc, id); err != nil {
		return nil, err
	}
	if r.AbuseReports, err = loadAbuseEntries(dbc, id); err != nil {
		return nil, err
	}
	return r, nil
}

func loadVotes(dbc *sql.DB, reportID string) (up []string, down []string, err error) {
	rows, err := dbc.Query(`SELECT user_id, vote FROM report_votes
	  WHERE report_id = ? ORDER BY created_at, user_id`, reportID)
	if err != nil {
		log.Errorf("Error reading votes for report %s: %v", reportID, err)
		return nil, nil, err
	}
	defer rows.Close()

	up, down = []string{}, []string{}
	for rows.Next() {
		var userID, vote string
		if err := rows.Scan(&userID, &vote); err != nil {
			return nil, nil, err
		}
		if vote == voteUp {
			up = append(up, userID)
		} else {
			down = append(down, userID)
		}
	}
	return up, down, rows.Err()
}

func loadAbuseEntries(dbc *sql.DB, reportID string) ([]api.AbuseEntry, error) {
	rows, err := dbc.Query(`SELECT user_id, reason, created_at FROM report_abuse
	  WHERE report_id = ? ORDER BY created_at, user_id`, reportID)
	if err != nil {
		log.Errorf("Error reading abuse entries for report %s: %v", reportID, err)
		return nil, err
	}
	defer rows.Close()

	entries := []api.AbuseEntry{}
	for rows.Next() {
		var e api.AbuseEntry
		if err := rows.Scan(&e.UserID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanSummaries(rows *sql.Rows) ([]api.ReportSummary, error) {
	defer rows.Close()
	out := []api.ReportSummary{}
	for rows.Next() {
		var (
			s       api.ReportSummary
			address sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Category, &s.Status, &s.AuthorID,
			&s.Username, &s.Location.Latitude, &s.Location.Longitude, &address,
			&s.ReportCount, &s.CreatedAt, &s.UpvoteCount, &s.DownvoteCount); err != nil {
			return nil, err
		}
		s.Location.Address = address.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListPublicReports returns all reports, newest first.
func ListPublicReports(dbc *sql.DB) ([]api.ReportSummary, error) {
	rows, err := dbc.Query(`SELECT ` + summaryColumns + `
	  FROM reports r
	  LEFT JOIN users u ON u.id = r.author_id
	  ORDER BY r.created_at DESC`)
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		return nil, err
	}
	return scanSummaries(rows)
}

// ListReports returns the actor's own reports, or every report for admins.
func ListReports(dbc *sql.DB, actor api.Actor) ([]api.ReportSummary, error) {
	if actor.IsAdmin() {
		return ListPublicReports(dbc)
	}
	rows, err := dbc.Query(`SELECT `+summaryColumns+`
	  FROM reports r
	  LEFT JOIN users u ON u.id = r.author_id
	  WHERE r.author_id = ?
	  ORDER BY r.created_at DESC`, actor.ID)
	if err != nil {
		log.Errorf("Error listing reports for %s: %v", actor.ID, err)
		return nil, err
	}
	return scanSummaries(rows)
}

func reportExists(dbc *sql.DB, id string) error {
	var one int
	err := dbc.QueryRow(`SELECT 1 FROM reports WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	return err
}

// SetStatus moves a report to newStatus. The in_progress_at/resolved_at
// timestamps record when a status was first reached and are never cleared,
// even when the status later moves away. Transitions are not ordered.
func SetStatus(dbc *sql.DB, id, newStatus string, actor api.Actor) (*api.Report, error) {
	switch newStatus {
	case api.StatusPending, api.StatusInProgress, api.StatusResolved:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins can update post status: %w", ErrForbidden)
	}
	if err := reportExists(dbc, id); err != nil {
		return nil, err
	}

	result, err := dbc.Exec(`UPDATE reports SET status = ?,
	  in_progress_at = IF(? = 'in-progress' AND in_progress_at IS NULL, NOW(), in_progress_at),
	  resolved_at = IF(? = 'resolved' AND resolved_at IS NULL, NOW(), resolved_at)
	  WHERE id = ?`, newStatus, newStatus, newStatus, id)
	common.LogResult("setStatus", result, err, false)
	if err != nil {
		log.Errorf("Error updating status of report %s: %v", id, err)
		return nil, err
	}
	return GetReport(dbc, id)
}

// AttachAfterImage stores the resolution-proof photo. The conditional
// update only matches resolved reports; a miss is re-queried to tell a
// missing report from one in the wrong state.
func AttachAfterImage(dbc *sql.DB, id, image string, actor api.Actor) (*api.Report, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins can attach an after image: %w", ErrForbidden)
	}
	if image == "" {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}

	result, err := dbc.Exec(`UPDATE reports SET after_image = ?
	  WHERE id = ? AND status = 'resolved'`, image, id)
	if err != nil {
		log.Errorf("Error attaching after image to report %s: %v", id, err)
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		var status string
		err := dbc.QueryRow(`SELECT status FROM reports WHERE id = ?`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if status != api.StatusResolved {
			return nil, fmt.Errorf("report %s has status %s: %w", id, status, ErrInvalidState)
		}
		// The stored image already matched; nothing to change.
	}
	return GetReport(dbc, id)
}

// DeleteReport removes the report and its vote/abuse rows. Allowed for the
// author and for admins.
func DeleteReport(dbc *sql.DB, id string, actor api.Actor) error {
	var authorID string
	err := dbc.QueryRow(`SELECT author_id FROM reports WHERE id = ?`, id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != authorID {
		return fmt.Errorf("not authorized to delete this post: %w", ErrForbidden)
	}

	tx, err := dbc.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM report_votes WHERE report_id = ?`, id); err != nil {
		log.Errorf("Error deleting votes of report %s: %v", id, err)
		return err
	}
	if _, err := tx.Exec(`DELETE FROM report_abuse WHERE report_id = ?`, id); err != nil {
		log.Errorf("Error deleting abuse entries of report %s: %v", id, err)
		return err
	}
	result, err := tx.Exec(`DELETE FROM reports WHERE id = ?`, id)
	common.LogResult("deleteReport", result, err, true)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetStats returns platform totals for the admin dashboard.
func GetStats(dbc *sql.DB) (*api.StatsResponse, error) {
	s := &api.StatsResponse{}
	err := dbc.QueryRow(`SELECT
	  (SELECT COUNT(*) FROM reports),
	  (SELECT COUNT(*) FROM users)`).Scan(&s.TotalReports, &s.TotalUsers)
	if err != nil {
		log.Errorf("Error reading stats: %v", err)
		return nil, err
	}
	return s, nil
}

// GetMapPins returns one pin per report inside the viewport.
func GetMapPins(dbc *sql.DB, vp *api.ViewPort) ([]api.MapResult, error) {
	rows, err := dbc.Query(`SELECT id, latitude, longitude, status FROM reports
	  WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		vp.LatMin, vp.LatMax, vp.LonMin, vp.LonMax)
	if err != nil {
		log.Errorf("Error reading map pins: %v", err)
		return nil, err
	}
	defer rows.Close()

	pins := []api.MapResult{}
	for rows.Next() {
		p := api.MapResult{Count: 1}
		if err := rows.Scan(&p.ReportID, &p.Latitude, &p.Longitude, &p.Status); err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}
