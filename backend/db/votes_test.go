package db

import (
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestUpvoteAdds(t *testing.T) {
	it(func() {
		expectReportExists("r1")
		// No existing upvote to remove, so the vote is written.
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_votes")).
			WithArgs("r1", "u1", "up").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_votes")).
			WithArgs("r1", "u1", "up", "up").
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectReadReport("r1")

		if _, err := Upvote(dbc, "r1", "u1"); err != nil {
			t.Fatalf("Upvote: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestUpvoteTogglesOff(t *testing.T) {
	it(func() {
		expectReportExists("r1")
		// The user already upvoted; the toggle removes the row and stops.
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_votes")).
			WithArgs("r1", "u1", "up").
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectReadReport("r1")

		if _, err := Upvote(dbc, "r1", "u1"); err != nil {
			t.Fatalf("Upvote: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestDownvoteOverridesUpvote(t *testing.T) {
	it(func() {
		expectReportExists("r1")
		// No downvote row to delete; the upsert rewrites the existing
		// (report, user) row in place, clearing the upvote.
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_votes")).
			WithArgs("r1", "u1", "down").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_votes")).
			WithArgs("r1", "u1", "down", "down").
			WillReturnResult(sqlmock.NewResult(0, 2))
		expectReadReport("r1")

		if _, err := Downvote(dbc, "r1", "u1"); err != nil {
			t.Fatalf("Downvote: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestUpvoteNotFound(t *testing.T) {
	it(func() {
		expectReportMissing("ghost")
		if _, err := Upvote(dbc, "ghost", "u1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
