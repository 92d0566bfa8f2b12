package router

import (
	"github.com/RigelNana/edumarket/gateway/docs"
	"github.com/RigelNana/edumarket/gateway/handler"
	"github.com/RigelNana/edumarket/gateway/middleware"
	ginmetrics "github.com/RigelNana/edumarket/pkg/metrics/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Resources *handler.ResourceHandler
	Dashboard *handler.DashboardHandler
	Admin     *handler.AdminHandler
	Landing   *handler.LandingHandler
}

func Setup(h Handlers, auth middleware.Authenticator, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog(log))
	r.Use(ginmetrics.PrometheusMiddleware("gateway"))
	r.Use(middleware.SessionAuth(auth, log))

	docs.RegisterRoutes(r)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
		api.POST("/admin/login", h.Auth.AdminLogin)

		api.GET("/landing", h.Landing.Get)
		api.GET("/categories", h.Resources.Categories)
		api.GET("/resources", h.Resources.Browse)
		api.GET("/resources/:id", h.Resources.Get)
		// the handler answers 401 itself with the login notice
		api.POST("/resources/:id/download", h.Resources.Download)
	}

	signedIn := api.Group("")
	signedIn.Use(middleware.RequireSession())
	{
		signedIn.POST("/logout", h.Auth.Logout)
		signedIn.GET("/me", h.Auth.Me)
		signedIn.PUT("/me/password", h.Auth.ChangePassword)
		signedIn.POST("/resources", h.Resources.Upload)
	}

	user := api.Group("/dashboard")
	user.Use(middleware.RequireUser())
	{
		user.GET("", h.Dashboard.Get)
		user.DELETE("/resources/:id", h.Dashboard.DeleteUpload)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/overview", h.Admin.Overview)
		admin.PATCH("/resources/:id/status", h.Admin.SetResourceStatus)
		admin.PATCH("/users/:id/status", h.Admin.SetUserStatus)
		admin.DELETE("/resources/:id", h.Admin.DeleteResource)
	}
	return r
}
