package server

import (
	"net/http"

	"civicfix/backend/db"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func GetStats(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	stats, err := db.GetStats(dbc)
	if err != nil {
		log.Errorf("Failed to read stats: %v", err)
		renderError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, stats)
}
