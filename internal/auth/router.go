package auth

import (
	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers public auth routes
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", r.controller.Login)
	}
}

// SetupProtectedRoutes registers auth routes on an already-authenticated group
func (r *Router) SetupProtectedRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.PUT("/change-password", r.controller.ChangePassword)
		authGroup.GET("/me", r.controller.GetMe)
	}
}
