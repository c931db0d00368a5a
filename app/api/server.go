package api

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/idea-box/app/cfg"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for the public API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	appCfg := cfg.Get()

	// Public pages and API
	r.GET("/", handler.GetIndex)
	r.GET("/api/random-idea", handler.GetRandomIdea)
	r.POST("/api/submit-idea", handler.SubmitIdea)
	r.GET("/api/rate-limit-status", handler.GetRateLimitStatus)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	// Admin dashboard and transition API, behind shared basic auth credentials
	admin := r.Group("/admin", gin.BasicAuthForRealm(gin.Accounts{
		appCfg.AdminUsername: appCfg.AdminPassword,
	}, "Restricted Area"))
	{
		admin.GET("", handler.GetAdminDashboard)
		admin.POST("/api/approve/:id", handler.ApproveSubmission)
		admin.POST("/api/reject/:id", handler.RejectSubmission)
		admin.DELETE("/api/delete/:id", handler.DeleteSubmission)
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
