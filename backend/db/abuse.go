package db

import (
	"database/sql"
	"errors"
	"fmt"

	"civicfix/backend/server/api"
	"civicfix/common"

	"github.com/apex/log"
	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// DefaultFlagThreshold is the report count at which a post enters the
// moderation queue.
const DefaultFlagThreshold = 5

// ReportAbuse records the user's flag against a report. The primary key on
// (report_id, user_id) makes a second flag from the same user fail
// atomically, so concurrent duplicates cannot both land and report_count
// moves by exactly one per distinct flagger.
func ReportAbuse(dbc *sql.DB, reportID, userID, reason string) (*api.Report, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: report reason is required", ErrValidation)
	}
	if err := reportExists(dbc, reportID); err != nil {
		return nil, err
	}

	tx, err := dbc.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO report_abuse (report_id, user_id, reason)
	  VALUES (?, ?, ?)`, reportID, userID, reason)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return nil, fmt.Errorf("user %s on report %s: %w", userID, reportID, ErrAlreadyReported)
		}
		log.Errorf("Error inserting abuse entry for report %s: %v", reportID, err)
		return nil, err
	}

	result, err := tx.Exec(`UPDATE reports SET report_count = report_count + 1
	  WHERE id = ?`, reportID)
	common.LogResult("reportAbuse", result, err, true)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return GetReport(dbc, reportID)
}

// ClearAbuseReports empties the report's abuse entries and resets its
// counter. Status is left untouched.
func ClearAbuseReports(dbc *sql.DB, reportID string, actor api.Actor) (*api.Report, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only admins can clear reports: %w", ErrForbidden)
	}
	if err := reportExists(dbc, reportID); err != nil {
		return nil, err
	}

	tx, err := dbc.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM report_abuse WHERE report_id = ?`, reportID); err != nil {
		log.Errorf("Error clearing abuse entries of report %s: %v", reportID, err)
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE reports SET report_count = 0 WHERE id = ?`, reportID); err != nil {
		log.Errorf("Error resetting report count of report %s: %v", reportID, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return GetReport(dbc, reportID)
}

// ListFlagged returns reports whose abuse count reached the threshold,
// most flagged first.
func ListFlagged(dbc *sql.DB, threshold int) ([]api.ReportSummary, error) {
	if threshold <= 0 {
		threshold = DefaultFlagThreshold
	}
	rows, err := dbc.Query(`SELECT `+summaryColumns+`
	  FROM reports r
	  LEFT JOIN users u ON u.id = r.author_id
	  WHERE r.report_count >= ?
	  ORDER BY r.report_count DESC, r.created_at DESC`, threshold)
	if err != nil {
		log.Errorf("Error listing flagged reports: %v", err)
		return nil, err
	}
	return scanSummaries(rows)
}

// AbuseInfo returns the moderation view of a single report.
func AbuseInfo(dbc *sql.DB, reportID string, threshold int) (*api.AbuseInfoResponse, error) {
	if threshold <= 0 {
		threshold = DefaultFlagThreshold
	}
	var count int
	err := dbc.QueryRow(`SELECT report_count FROM reports WHERE id = ?`, reportID).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", reportID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	entries, err := loadAbuseEntries(dbc, reportID)
	if err != nil {
		return nil, err
	}
	return &api.AbuseInfoResponse{
		ReportCount:      count,
		Reports:          entries,
		ReportsThreshold: threshold,
		ExceedsThreshold: count >= threshold,
	}, nil
}
