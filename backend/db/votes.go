package db

import (
	"database/sql"

	"civicfix/backend/server/api"

	"github.com/apex/log"
)

const (
	voteUp   = "up"
	voteDown = "down"
)

// toggleVote flips the user's membership in the given vote direction. A
// vote in the opposite direction is overwritten in place; both outcomes
// are single conditional statements, so concurrent voters on the same
// report cannot leave a user in both sets.
func toggleVote(dbc *sql.DB, reportID, userID, dir string) error {
	if err := reportExists(dbc, reportID); err != nil {
		return err
	}

	result, err := dbc.Exec(`DELETE FROM report_votes
	  WHERE report_id = ? AND user_id = ? AND vote = ?`, reportID, userID, dir)
	if err != nil {
		log.Errorf("Error removing %s vote on report %s: %v", dir, reportID, err)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		// The user had this vote; the toggle removed it.
		return nil
	}

	result, err = dbc.Exec(`INSERT INTO report_votes (report_id, user_id, vote)
	  VALUES (?, ?, ?)
	  ON DUPLICATE KEY UPDATE vote = ?`, reportID, userID, dir, dir)
	if err != nil {
		log.Errorf("Error casting %s vote on report %s: %v", dir, reportID, err)
	}
	return err
}

// Upvote toggles the user's upvote, clearing any downvote first.
func Upvote(dbc *sql.DB, reportID, userID string) (*api.Report, error) {
	if err := toggleVote(dbc, reportID, userID, voteUp); err != nil {
		return nil, err
	}
	return GetReport(dbc, reportID)
}

// Downvote toggles the user's downvote, clearing any upvote first.
func Downvote(dbc *sql.DB, reportID, userID string) (*api.Report, error) {
	if err := toggleVote(dbc, reportID, userID, voteDown); err != nil {
		return nil, err
	}
	return GetReport(dbc, reportID)
}
