package invoices

import (
	"github.com/gin-gonic/gin"
)

// Router handles invoice-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new invoices router
func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupAdminRoutes registers invoice routes on an already-authenticated admin group
func (r *Router) SetupAdminRoutes(rg *gin.RouterGroup) {
	invoicesGroup := rg.Group("/invoices")
	{
		invoicesGroup.GET("/for-events", r.controller.DraftsForEvents)
		invoicesGroup.POST("/send", r.controller.Send)
		invoicesGroup.GET("/:invoiceId", r.controller.GetInvoice)
		invoicesGroup.POST("/:invoiceId/mark-paid", r.controller.MarkPaid)
	}
}
