package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerkit/cvmatch/internal/middleware"
)

type RouterDeps struct {
	Extract       *ExtractHandler
	Match         *MatchHandler
	MatchInterval time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Match.Health)
	api.GET("/roles", deps.Match.Roles)
	api.POST("/documents/extract", deps.Extract.Extract)

	matchGroup := api.Group("")
	matchGroup.Use(middleware.RateLimit(deps.MatchInterval))
	matchGroup.POST("/match", deps.Match.Match)

	api.GET("/match/report/:key", deps.Match.Report)
}
