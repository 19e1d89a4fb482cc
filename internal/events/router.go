package events

import (
	"github.com/gin-gonic/gin"
)

// Router wires the events endpoints.
type Router struct {
	controller Controller
}

func NewRouter(controller Controller) *Router {
	return &Router{controller: controller}
}

// SetupPublicRoutes registers the booking form and calendar endpoints.
func (r *Router) SetupPublicRoutes(rg *gin.RouterGroup) {
	eventsGroup := rg.Group("/events")
	{
		eventsGroup.POST("", r.controller.SubmitBooking)
		eventsGroup.GET("", r.controller.ListPublic)
		eventsGroup.GET("/quote", r.controller.Quote)
		eventsGroup.GET("/ics", r.controller.ICSFeed)
	}
}

// SetupAdminRoutes registers the review endpoints on the admin group.
func (r *Router) SetupAdminRoutes(rg *gin.RouterGroup) {
	eventsGroup := rg.Group("/events")
	{
		eventsGroup.GET("", r.controller.GetAllEvents)
		eventsGroup.POST("", r.controller.CreateEvents)
		eventsGroup.GET("/:eventId", r.controller.GetEvent)
		eventsGroup.POST("/:eventId/approve", r.controller.Approve)
		eventsGroup.POST("/:eventId/cancel", r.controller.Cancel)
		eventsGroup.POST("/:eventId/request-documents", r.controller.RequestDocuments)
		eventsGroup.POST("/:eventId/set-rate", r.controller.SetRate)
	}
}
