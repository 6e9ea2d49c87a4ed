package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB *gorm.DB
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/health", h.health)
}

func (h *HealthHandler) health(c *gin.Context) {
	status := map[string]any{"status": "ok"}
	if h.DB != nil {
		sqldb, err := h.DB.DB()
		if err == nil {
			err = sqldb.PingContext(c.Request.Context())
		}
		if err != nil {
			status["status"] = "degraded"
			status["db"] = err.Error()
			Error(c, http.StatusServiceUnavailable, "db unavailable", status)
			return
		}
		status["db"] = "ok"
	}
	Ok(c, status, nil)
}
