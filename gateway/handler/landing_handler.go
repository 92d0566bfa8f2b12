package handler

import (
	"fmt"
	"net/http"

	"github.com/RigelNana/edumarket/services/resource-service/models"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var features = []feature{
	{Icon: "upload", Title: "Easy Upload", Description: "Upload your academic resources in seconds with our simple interface"},
	{Icon: "search", Title: "Smart Search", Description: "Find exactly what you need with advanced search and filtering"},
	{Icon: "users", Title: "Community Driven", Description: "Join thousands of students sharing knowledge freely"},
	{Icon: "shield", Title: "100% Free", Description: "All resources are completely free - no hidden costs or subscriptions"},
}

type LandingHandler struct {
	resources resourceservice.ResourceService
	log       *logrus.Logger
}

func NewLandingHandler(resources resourceservice.ResourceService, log *logrus.Logger) *LandingHandler {
	return &LandingHandler{resources: resources, log: log}
}

// Get 首页数据
// GET /api/landing
func (h *LandingHandler) Get(c *gin.Context) {
	stats, err := h.resources.Landing(c.Request.Context())
	if err != nil {
		respondResourceError(c, h.log, err, "failed to load landing page")
		return
	}

	categories := make([]categoryView, 0, len(models.Categories))
	for _, cat := range models.Categories {
		v := toCategoryView(cat)
		n := stats.Categories[cat]
		v.Count = &n
		categories = append(categories, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"features":   features,
		"totals": gin.H{
			"resources_shared": stats.Totals.TotalUploads,
			"downloads":        stats.Totals.TotalDownloads,
			"views":            stats.Totals.TotalViews,
			"contributors":     stats.Contributors,
		},
		"headline": fmt.Sprintf("%d resources shared by %d students", stats.Totals.TotalUploads, stats.Contributors),
	})
}
