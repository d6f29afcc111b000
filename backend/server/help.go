package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Help(c *gin.Context) {
	c.String(http.StatusOK, `
	CivicFix API:
	Crowdsourced civic issue reporting server, version 1.0.
	`)
}

func Health(c *gin.Context) {
	clients, lastEvent := hub.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           "civicfix-backend",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"connected_clients": clients,
		"last_event":        lastEvent,
	})
}
