package server

import (
	"net/http"

	"civicfix/backend/db"
	"civicfix/backend/mapfeed"
	"civicfix/backend/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func GetMap(c *gin.Context) {
	var ma api.MapArgs
	if err := c.BindJSON(&ma); err != nil {
		log.Errorf("Failed to get the argument in %s call: %v", EndPointGetMap, err)
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("Error connecting to DB: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	pins, err := db.GetMapPins(dbc, &ma.VPort)
	if err != nil {
		log.Errorf("Failed to query map pins: %v", err)
		renderError(c, err)
		return
	}

	a := mapfeed.NewAggregator(&ma.VPort, &ma.Center)
	for _, p := range pins {
		a.AddPin(p)
	}
	c.IndentedJSON(http.StatusOK, a.ToArray())
}
