package server

import (
	"net/http"

	"civicfix/backend/server/api"

	"github.com/gin-gonic/gin"
)

// categoryList is the fixed category set offered to clients. The names
// must stay in sync with api.Categories, which is what creation accepts.
var categoryList = []api.Category{
	{Name: "Water", Subcategories: []string{"Water Supply", "Drainage", "Flooding"}},
	{Name: "Roads", Subcategories: []string{"Potholes", "Traffic Signals", "Street Lights"}},
	{Name: "Landslides", Subcategories: []string{"Road Blockage", "Property Damage", "Emergency Response"}},
	{Name: "Electricity", Subcategories: []string{"Power Outage", "Faulty Lines", "Street Lighting"}},
	{Name: "Sanitation", Subcategories: []string{"Garbage Collection", "Public Toilets", "Sewage"}},
	{Name: "Others", Subcategories: []string{"General", "Emergency", "Maintenance"}},
}

func GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, categoryList)
}
