package rates

import (
	"net/http"

	"hallbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListRates(ctx *gin.Context) {
	rates, err := c.service.ListRates(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list rates", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Rates retrieved successfully", rates, nil)
}

func (c *Controller) GetRate(ctx *gin.Context) {
	rate, err := c.service.GetRate(ctx.Param("rateId"))
	if err != nil {
		switch err {
		case ErrRateNotFound:
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Rate not found", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get rate", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Rate retrieved successfully", rate, nil)
}

func (c *Controller) CreateRate(ctx *gin.Context) {
	var req CreateRateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	rate, err := c.service.CreateRate(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create rate", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Rate created successfully", rate, nil)
}
