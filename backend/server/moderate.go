package server

import (
	"database/sql"
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/rabbitmq"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// audit records an admin action. Failures are logged and swallowed so
// moderation itself never fails on the audit trail.
func audit(dbc *sql.DB, actor api.Actor, action, targetID string, details interface{}) {
	err := db.InsertModerationEvent(dbc, db.ModerationEvent{
		Actor:    actor.ID,
		Action:   action,
		TargetID: targetID,
		Details:  details,
	})
	if err != nil {
		log.Errorf("Failed to record moderation event %s on %s: %v", action, targetID, err)
	}
}

// ReportAbuse lets a user flag a report once. Flagging the same report
// twice is rejected.
func ReportAbuse(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var args api.AbuseArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointReportAbuse, err)
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	id := c.Param("id")
	report, err := db.ReportAbuse(dbc, id, actor.ID, args.Reason)
	if err != nil {
		log.Errorf("Failed to report abuse on %s: %v", id, err)
		renderError(c, err)
		return
	}

	if report.ReportCount >= *flagThreshold {
		announce(rabbitmq.RouteReportFlagged, "report_flagged", report)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Post reported successfully",
		"report_count": report.ReportCount,
	})
}

// AbuseInfo returns the flag state of one report.
func AbuseInfo(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	info, err := db.AbuseInfo(dbc, c.Param("id"), *flagThreshold)
	if err != nil {
		log.Errorf("Failed to read abuse info for %s: %v", c.Param("id"), err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListFlagged returns reports whose flag count reached the threshold.
func ListFlagged(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	flagged, err := db.ListFlagged(dbc, *flagThreshold)
	if err != nil {
		log.Errorf("Failed to list flagged reports: %v", err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.FlaggedResponse{Posts: flagged, Total: len(flagged)})
}

// ClearAbuseReports wipes all flags from a report.
func ClearAbuseReports(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	id := c.Param("id")
	report, err := db.ClearAbuseReports(dbc, id, actor)
	if err != nil {
		log.Errorf("Failed to clear abuse reports on %s: %v", id, err)
		renderError(c, err)
		return
	}

	audit(dbc, actor, "clear_reports", id, nil)
	announce(rabbitmq.RouteReportModerated, "report_cleared", report)

	c.JSON(http.StatusOK, gin.H{"message": "Reports cleared successfully"})
}
