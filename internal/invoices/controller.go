package invoices

import (
	"net/http"
	"strings"

	"hallbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// DraftsForEvents handles GET /invoices/for-events?events=a,b,c
func (c *Controller) DraftsForEvents(ctx *gin.Context) {
	raw := ctx.Query("events")
	if raw == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "events query parameter is required", nil, nil)
		return
	}

	var eventIDs []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID: "+part, nil, nil)
			return
		}
		eventIDs = append(eventIDs, id)
	}
	if len(eventIDs) == 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "events query parameter is required", nil, nil)
		return
	}

	drafts, err := c.service.DraftsForEvents(eventIDs)
	if err != nil {
		switch err {
		case ErrNoEvents:
			response.RespondJSON(ctx, "error", http.StatusNotFound, "No events found for the given ids", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to derive invoice drafts", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Invoice drafts derived successfully", drafts, nil)
}

func (c *Controller) Send(ctx *gin.Context) {
	var req SendInvoiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	invoice, err := c.service.Send(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to send invoice", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Invoice sent successfully", invoice, nil)
}

func (c *Controller) GetInvoice(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("invoiceId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid invoice ID", nil, nil)
		return
	}

	invoice, err := c.service.GetInvoice(id)
	if err != nil {
		switch err {
		case ErrInvoiceNotFound:
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Invoice not found", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get invoice", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Invoice retrieved successfully", invoice, nil)
}

func (c *Controller) MarkPaid(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("invoiceId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid invoice ID", nil, nil)
		return
	}

	invoice, err := c.service.MarkPaid(ctx.Request.Context(), id)
	if err != nil {
		switch err {
		case ErrInvoiceNotFound:
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Invoice not found", nil, nil)
		case ErrInvoiceAlreadyPaid:
			response.RespondJSON(ctx, "error", http.StatusConflict, "Invoice already marked as paid", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to mark invoice paid", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Invoice marked as paid", invoice, nil)
}
