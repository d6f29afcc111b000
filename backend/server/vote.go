package server

import (
	"database/sql"
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func Upvote(c *gin.Context) {
	vote(c, db.Upvote)
}

func Downvote(c *gin.Context) {
	vote(c, db.Downvote)
}

func vote(c *gin.Context, apply func(dbc *sql.DB, reportID, userID string) (*api.Report, error)) {
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

	report, err := apply(dbc, c.Param("id"), actor.ID)
	if err != nil {
		log.Errorf("Failed to vote on report %s: %v", c.Param("id"), err)
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
