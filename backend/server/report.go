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

func CreateReport(c *gin.Context) {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	var draft api.ReportDraft
	if err := c.BindJSON(&draft); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointReports, err)
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	report, err := db.CreateReport(dbc, &draft, actor, fence)
	if err != nil {
		log.Errorf("Failed to create report: %v", err)
		renderError(c, err)
		return
	}

	announce(rabbitmq.RouteReportCreated, "report_created", report)

	c.JSON(http.StatusCreated, report)
}

// announce pushes an event to RabbitMQ and to connected dashboards.
// Both sinks are optional and never block the request.
func announce(routingKey, eventType string, data interface{}) {
	publisher.PublishAsync(routingKey, data)
	hub.Broadcast(eventType, data)
}
