package handler

import (
	"errors"
	"net/http"

	"github.com/RigelNana/edumarket/gateway/middleware"
	"github.com/RigelNana/edumarket/services/resource-service/listing"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ResourceHandler struct {
	resources resourceservice.ResourceService
	log       *logrus.Logger
}

func NewResourceHandler(resources resourceservice.ResourceService, log *logrus.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, log: log}
}

// Browse 搜索和筛选资源
// GET /api/resources?q=&category=
func (h *ResourceHandler) Browse(c *gin.Context) {
	query := c.Query("q")
	category := listing.ParseCategory(c.Query("category"))

	res, err := h.resources.Browse(c.Request.Context(), query, category)
	if err != nil {
		h.log.WithError(err).Error("Error fetching resources")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      resourceservice.FetchFailedNotice.Description,
			"notice":     resourceservice.FetchFailedNotice,
			"resources":  []resourceView{},
			"total":      0,
			"shown":      0,
			"categories": browseCategories(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resources":  toResourceViews(res.Resources),
		"total":      res.Total,
		"shown":      res.Shown,
		"query":      query,
		"category":   category,
		"categories": browseCategories(),
	})
}

// browseCategories is the category dropdown, "all" first.
func browseCategories() []gin.H {
	out := []gin.H{{"value": listing.All, "label": "All Categories"}}
	for _, cat := range models.Categories {
		out = append(out, gin.H{"value": cat, "label": cat.Title()})
	}
	return out
}

// Get 查看资源详情，计入一次浏览；被拒绝的资源只对管理员可见
// GET /api/resources/:id
func (h *ResourceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.resources.View(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		respondResourceError(c, h.log, err, "failed to load resource")
		return
	}
	c.JSON(http.StatusOK, gin.H{"resource": toResourceViews([]*models.Resource{r})[0]})
}

// Download 下载资源并返回刷新后的列表
// POST /api/resources/:id/download?q=&category=
func (h *ResourceHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.resources.Download(c.Request.Context(), middleware.CurrentSession(c), id, c.Query("q"), listing.ParseCategory(c.Query("category")))
	if err != nil {
		if errors.Is(err, resourceservice.ErrAuthRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Please log in to download resources.",
				"notice":   resourceservice.Notice{Title: "Login Required", Description: "Please log in to download resources."},
				"redirect": "/login",
			})
			return
		}
		respondResourceError(c, h.log, err, "Failed to download the resource.")
		return
	}

	body := gin.H{
		"notice":    res.Ack,
		"counted":   res.Counted,
		"resources": toResourceViews(res.Listing.Resources),
		"total":     res.Listing.Total,
		"shown":     res.Listing.Shown,
	}
	if res.URL != "" {
		body["url"] = res.URL
	}
	if res.ListingErr != nil {
		body["listing_error"] = resourceservice.FetchFailedNotice
	}
	c.JSON(http.StatusOK, body)
}

type uploadForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Category    string `form:"category"`
	Subject     string `form:"subject"`
}

// Upload 上传资源（multipart/form-data）
// POST /api/resources
func (h *ResourceHandler) Upload(c *gin.Context) {
	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form", "detail": err.Error()})
		return
	}

	in := resourceservice.UploadInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    models.Category(form.Category),
		Subject:     form.Subject,
	}

	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		in.FileName = header.Filename
		in.Size = header.Size
		in.Content = file
	}

	r, err := h.resources.Upload(c.Request.Context(), middleware.CurrentSession(c), in)
	if err != nil {
		respondResourceError(c, h.log, err, "An error occurred while uploading your resource.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"resource": toResourceViews([]*models.Resource{r})[0],
		"notice": resourceservice.Notice{
			Title:       "Upload successful!",
			Description: "Your resource has been uploaded and is now available to the community.",
		},
		"redirect": "/browse",
	})
}

// Categories 上传表单的分类选项
// GET /api/categories
func (h *ResourceHandler) Categories(c *gin.Context) {
	out := make([]categoryView, 0, len(models.Categories))
	for _, cat := range models.Categories {
		out = append(out, toCategoryView(cat))
	}
	c.JSON(http.StatusOK, gin.H{
		"categories":         out,
		"allowed_extensions": resourceservice.AllowedExtensions,
	})
}
