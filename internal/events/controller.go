package events

import (
	"context"
	"errors"
	"net/http"

	"hallbook/internal/captcha"
	"hallbook/internal/rates"
	"hallbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	SubmitBooking(c *gin.Context)
	Quote(c *gin.Context)
	ListPublic(c *gin.Context)
	ICSFeed(c *gin.Context)

	GetAllEvents(c *gin.Context)
	GetEvent(c *gin.Context)
	CreateEvents(c *gin.Context)
	Approve(c *gin.Context)
	Cancel(c *gin.Context)
	RequestDocuments(c *gin.Context)
	SetRate(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) SubmitBooking(c *gin.Context) {
	var req SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, fieldErrors, err := ctrl.service.SubmitBooking(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, captcha.ErrVerificationFailed):
			response.RespondJSON(c, "error", http.StatusBadRequest, "Captcha verification failed", nil, nil)
		case errors.Is(err, ErrBookingExists):
			response.RespondJSON(c, "error", http.StatusConflict, ErrBookingExists.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to submit booking", nil, nil)
		}
		return
	}

	if len(fieldErrors) > 0 {
		response.RespondJSON(c, "error", http.StatusUnprocessableEntity, "Validation failed", nil, fieldErrors)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking submitted successfully", result, nil)
}

// Quote never fails; garbage times price as zero hours.
func (ctrl *controller) Quote(c *gin.Context) {
	breakdown := ctrl.service.Quote(c.Query("timeFrom"), c.Query("timeTo"))
	response.RespondJSON(c, "success", http.StatusOK, "Quote computed successfully", breakdown, nil)
}

func (ctrl *controller) ListPublic(c *gin.Context) {
	events, err := ctrl.service.ListPublic(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func (ctrl *controller) ICSFeed(c *gin.Context) {
	feed, err := ctrl.service.ICSFeed(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to build calendar feed", nil, nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="oakfield-hall.ics"`)
	c.Data(http.StatusOK, "text/calendar", feed)
}

func (ctrl *controller) GetAllEvents(c *gin.Context) {
	var query EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	events, err := ctrl.service.GetAllEvents(query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Events retrieved successfully", events, nil)
}

func (ctrl *controller) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	event, err := ctrl.service.GetEvent(id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get event", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

func (ctrl *controller) CreateEvents(c *gin.Context) {
	var req CreateEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	events, err := ctrl.service.CreateEvents(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrBookingExists) {
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Events created successfully", events, nil)
}

func (ctrl *controller) Approve(c *gin.Context) {
	ctrl.changeStatus(c, ctrl.service.Approve, "Event approved successfully")
}

func (ctrl *controller) Cancel(c *gin.Context) {
	ctrl.changeStatus(c, ctrl.service.Cancel, "Event cancelled successfully")
}

func (ctrl *controller) RequestDocuments(c *gin.Context) {
	ctrl.changeStatus(c, ctrl.service.RequestDocuments, "Documents requested successfully")
}

func (ctrl *controller) SetRate(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := ctrl.service.SetRate(c.Request.Context(), id, req.RateID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
		case errors.Is(err, rates.ErrRateNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Rate not found", nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to set rate", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Rate assigned successfully", event, nil)
}

func (ctrl *controller) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*EventResponse, error), message string) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	event, err := op(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
		case errors.Is(err, ErrInvalidTransition):
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
		default:
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to update event", nil, nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, message, event, nil)
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
