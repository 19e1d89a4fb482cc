package rates

import (
	"github.com/gin-gonic/gin"
)

// Router handles rate-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new rates router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupAdminRoutes registers rate routes on an already-authenticated admin group
func (r *Router) SetupAdminRoutes(rg *gin.RouterGroup) {
	ratesGroup := rg.Group("/rates")
	{
		ratesGroup.GET("", r.controller.ListRates)
		ratesGroup.GET("/:rateId", r.controller.GetRate)
		ratesGroup.POST("", r.controller.CreateRate)
	}
}
