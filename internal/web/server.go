package web

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"family-planner/internal/config"
	"family-planner/internal/service"
)

// Server exposes the HTTP trigger surface: a health probe and the external
// cron endpoint that fires one reminder tick. External schedulers (hosted
// cron services) hit /api/notify instead of relying on in-process timers.
type Server struct {
	engine      *gin.Engine
	reminderSvc *service.ReminderService
	cfg         config.Config
}

func NewServer(reminderSvc *service.ReminderService, cfg config.Config) *Server {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:      gin.New(),
		reminderSvc: reminderSvc,
		cfg:         cfg,
	}

	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", s.handleHealth)
	notify := s.engine.Group("/api", s.requireCronSecret)
	notify.GET("/notify", s.handleNotify)
	notify.POST("/notify", s.handleNotify)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// requireCronSecret gates the trigger endpoint behind a bearer token. With no
// secret configured the endpoint stays open in development and is refused
// outright in production.
func (s *Server) requireCronSecret(c *gin.Context) {
	if s.cfg.CronSecret == "" {
		if s.cfg.Production() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "trigger disabled: no secret configured"})
			return
		}
		c.Next()
		return
	}

	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.CronSecret)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleNotify(c *gin.Context) {
	now := time.Now().In(s.cfg.Location())
	summary, err := s.reminderSvc.RunTick(c.Request.Context(), now)
	if err != nil {
		log.Printf("reminder tick: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[info] reminder tick via http: sent=%d skipped=%d failed=%d", summary.Sent, summary.Skipped, summary.Failed)
	c.JSON(http.StatusOK, gin.H{
		"summary":   summary,
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}
