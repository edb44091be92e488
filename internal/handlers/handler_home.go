package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// home godoc
// @Summary Service info
// @Description Returns the service name, useful as a quick liveness probe.
// @Tags home
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "lotissement-backend"})
}
