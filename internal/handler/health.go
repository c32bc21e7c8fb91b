package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root answers the client reachability probe.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "FitPro auth API is running",
	})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
