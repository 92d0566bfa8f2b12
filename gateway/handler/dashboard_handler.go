package handler

import (
	"net/http"

	"github.com/RigelNana/edumarket/gateway/middleware"
	"github.com/RigelNana/edumarket/pkg/session"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	resources resourceservice.ResourceService
	log       *logrus.Logger
}

func NewDashboardHandler(resources resourceservice.ResourceService, log *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{resources: resources, log: log}
}

// currentUser relies on middleware.RequireUser having run.
func currentUser(c *gin.Context) session.User {
	u, _ := middleware.CurrentSession(c).(session.User)
	return u
}

// Get 用户仪表盘
// GET /api/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	user := currentUser(c)
	dash, err := h.resources.UserDashboard(c.Request.Context(), user)
	if err != nil {
		respondResourceError(c, h.log, err, "failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"welcome":  "Welcome back, " + user.DisplayName() + "!",
		"user":     sessionView(user),
		"stats":    dash.Stats,
		"uploads":  toResourceViews(dash.Uploads),
		"activity": dash.Activity,
	})
}

// DeleteUpload 删除自己的资源并返回刷新后的列表
// DELETE /api/dashboard/resources/:id
func (h *DashboardHandler) DeleteUpload(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user := currentUser(c)
	if err := h.resources.Delete(c.Request.Context(), user, id); err != nil {
		respondResourceError(c, h.log, err, "failed to delete resource")
		return
	}

	dash, err := h.resources.UserDashboard(c.Request.Context(), user)
	if err != nil {
		respondResourceError(c, h.log, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted": id,
		"stats":   dash.Stats,
		"uploads": toResourceViews(dash.Uploads),
	})
}
