package server

import (
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/rabbitmq"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func SetStatus(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var args api.StatusUpdateArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointStatus, err)
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	id := c.Param("id")
	report, err := db.SetStatus(dbc, id, args.Status, actor)
	if err != nil {
		log.Errorf("Failed to set status of report %s: %v", id, err)
		renderError(c, err)
		return
	}

	audit(dbc, actor, "set_status", id, gin.H{"status": args.Status})
	announce(rabbitmq.RouteReportStatus, "report_status", report)

	c.JSON(http.StatusOK, report)
}

func AttachAfterImage(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var args api.AfterImageArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointAfterImage, err)
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	id := c.Param("id")
	report, err := db.AttachAfterImage(dbc, id, args.Image, actor)
	if err != nil {
		log.Errorf("Failed to attach after image to report %s: %v", id, err)
		renderError(c, err)
		return
	}

	audit(dbc, actor, "attach_after_image", id, nil)
	announce(rabbitmq.RouteReportAfterImg, "report_after_image", report)

	c.JSON(http.StatusOK, report)
}
