package handler

import (
	"errors"
	"net/http"

	"github.com/RigelNana/edumarket/services/resource-service/models"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// resourceView adds display fields to a resource.
type resourceView struct {
	*models.Resource
	CategoryLabel string `json:"category_label"`
	CategoryColor string `json:"category_color"`
	StatusColor   string `json:"status_color"`
}

func toResourceViews(rs []*models.Resource) []resourceView {
	out := make([]resourceView, 0, len(rs))
	for _, r := range rs {
		out = append(out, resourceView{
			Resource:      r,
			CategoryLabel: r.Category.Title(),
			CategoryColor: r.Category.BadgeColor(),
			StatusColor:   models.StatusColor(r.Status),
		})
	}
	return out
}

type categoryView struct {
	Value       models.Category `json:"value"`
	Label       string          `json:"label"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	BadgeColor  string          `json:"badge_color"`
	Count       *int64          `json:"count,omitempty"`
}

func toCategoryView(c models.Category) categoryView {
	return categoryView{
		Value:       c,
		Label:       c.Label(),
		Title:       c.Title(),
		Description: c.Description(),
		Icon:        c.Icon(),
		BadgeColor:  c.BadgeColor(),
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondResourceError maps resource-service errors to HTTP responses.
func respondResourceError(c *gin.Context, log *logrus.Logger, err error, fallback string) {
	var verr *resourceservice.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, resourceservice.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": "/login"})
	case errors.Is(err, resourceservice.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, resourceservice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
