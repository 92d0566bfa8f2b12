package handler

import (
	"errors"
	"net/http"

	"github.com/RigelNana/edumarket/gateway/middleware"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	usermodels "github.com/RigelNana/edumarket/services/user-service/models"
	userservice "github.com/RigelNana/edumarket/services/user-service/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	resources resourceservice.ResourceService
	users     userservice.UserService
	log       *logrus.Logger
}

func NewAdminHandler(resources resourceservice.ResourceService, users userservice.UserService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{resources: resources, users: users, log: log}
}

type statCard struct {
	Title string `json:"title"`
	Value int64  `json:"value"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type adminUserRow struct {
	*usermodels.User
	Uploads     int64  `json:"uploads"`
	Downloads   int64  `json:"downloads"`
	StatusColor string `json:"status_color"`
}

type adminResourceRow struct {
	resourceView
	Uploader string `json:"uploader"`
}

// Overview 管理面板数据
// GET /api/admin/overview
func (h *AdminHandler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	res, err := h.resources.AdminResources(ctx)
	if err != nil {
		respondResourceError(c, h.log, err, "failed to load resources")
		return
	}
	users, err := h.users.List(ctx)
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}

	names := make(map[string]string, len(users))
	userRows := make([]adminUserRow, 0, len(users))
	for _, u := range users {
		if u.Name != "" {
			names[u.Email] = u.Name
		}
		stats := res.ByOwner[u.Email]
		userRows = append(userRows, adminUserRow{
			User:        u,
			Uploads:     stats.TotalUploads,
			Downloads:   stats.TotalDownloads,
			StatusColor: models.StatusColor(u.Status),
		})
	}

	views := toResourceViews(res.Resources)
	resourceRows := make([]adminResourceRow, 0, len(views))
	for _, v := range views {
		uploader := v.UploadedBy
		if name, ok := names[uploader]; ok {
			uploader = name
		}
		resourceRows = append(resourceRows, adminResourceRow{resourceView: v, Uploader: uploader})
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": []statCard{
			{Title: "Total Users", Value: int64(len(users)), Icon: "users", Color: "text-blue-600"},
			{Title: "Total Resources", Value: res.Totals.TotalUploads, Icon: "file-text", Color: "text-green-600"},
			{Title: "Total Downloads", Value: res.Totals.TotalDownloads, Icon: "download", Color: "text-purple-600"},
			{Title: "Pending Reviews", Value: res.Pending, Icon: "shield", Color: "text-orange-600"},
		},
		"users":     userRows,
		"resources": resourceRows,
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetResourceStatus 审核资源
// PATCH /api/admin/resources/:id/status
func (h *AdminHandler) SetResourceStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if err := h.resources.SetStatus(c.Request.Context(), middleware.CurrentSession(c), id, req.Status); err != nil {
		respondResourceError(c, h.log, err, "failed to update resource status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status, "status_color": models.StatusColor(req.Status)})
}

// SetUserStatus 启用/停用账号
// PATCH /api/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	u, err := h.users.SetStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, userservice.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, userservice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		h.log.WithError(err).Error("failed to update user status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "status_color": models.StatusColor(u.Status)})
}

// DeleteResource 删除任意资源
// DELETE /api/admin/resources/:id
func (h *AdminHandler) DeleteResource(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.resources.Delete(c.Request.Context(), middleware.CurrentSession(c), id); err != nil {
		respondResourceError(c, h.log, err, "failed to delete resource")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
