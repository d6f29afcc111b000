package server

import (
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/rabbitmq"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// ListReports is the public feed. No authentication, summary shape only.
func ListReports(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	reports, err := db.ListPublicReports(dbc)
	if err != nil {
		log.Errorf("Failed to list reports: %v", err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// MyReports lists the reports authored by the calling user.
func MyReports(c *gin.Context) {
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

	reports, err := db.ListReports(dbc, actor)
	if err != nil {
		log.Errorf("Failed to list reports for %s: %v", actor.ID, err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ReadReport returns one report in full, vote and flag membership included.
func ReadReport(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	report, err := db.GetReport(dbc, c.Param("id"))
	if err != nil {
		log.Errorf("Failed to read report %s: %v", c.Param("id"), err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func DeleteReport(c *gin.Context) {
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
	if err := db.DeleteReport(dbc, id, actor); err != nil {
		log.Errorf("Failed to delete report %s: %v", id, err)
		renderError(c, err)
		return
	}

	if actor.IsAdmin() {
		audit(dbc, actor, "delete_report", id, nil)
	}
	announce(rabbitmq.RouteReportDeleted, "report_deleted", gin.H{"id": id})

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}
