package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/propinspect/internal/middleware"
)

type RouterDeps struct {
	Auth               *AuthHandler
	Inspections        *InspectionHandler
	Shares             *ShareHandler
	Photos             *PhotoHandler
	JWTSecret          []byte
	PublicRateLimitRPM int
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/inspections", deps.Inspections.Create)
	authGroup.GET("/inspections", deps.Inspections.List)
	authGroup.GET("/inspections/:id", deps.Inspections.Get)
	authGroup.PUT("/inspections/:id", deps.Inspections.Update)
	authGroup.DELETE("/inspections/:id", deps.Inspections.Delete)

	authGroup.GET("/inspections/:id/items", deps.Inspections.ListItems)
	authGroup.PUT("/inspections/:id/items", deps.Inspections.ReplaceItems)

	authGroup.POST("/inspections/:id/share", deps.Shares.Issue)
	authGroup.GET("/inspections/:id/share", deps.Shares.Status)
	authGroup.DELETE("/inspections/:id/share", deps.Shares.Revoke)

	authGroup.POST("/inspections/:id/photos", deps.Photos.Upload)
	authGroup.GET("/inspections/:id/photos", deps.Photos.List)
	authGroup.GET("/inspections/:id/photos/:photo_id", deps.Photos.Get)

	publicGroup := api.Group("/public")
	publicGroup.Use(middleware.RateLimit(deps.PublicRateLimitRPM, time.Minute))
	publicGroup.GET("/share/:token", deps.Shares.PublicGet)
	publicGroup.GET("/share/:token/photos/:photo_id", deps.Photos.PublicGet)
}
