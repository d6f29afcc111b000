package common

import (
	"database/sql"

	"github.com/apex/log"
)

// LogResult checks the outcome of a write query. With exactlyOne it also
// warns when the affected row count is not 1.
func LogResult(msgPrefix string, r sql.Result, e error, exactlyOne bool) {
	if e != nil {
		log.Errorf("Query failed: %v", e)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("Failed to get status of db op: %v", err)
		return
	}
	if exactlyOne && rows != 1 {
		log.Warnf("%s: Expected to affect 1 row, affected %d", msgPrefix, rows)
	}
}
