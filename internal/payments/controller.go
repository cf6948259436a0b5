package payments

import (
	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListPayments(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query())

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load payments")
		return
	}
	response.RespondOK(ctx, "Payments retrieved successfully", upstream.ListData(page, state))
}

// CreatePayment godoc
// @Summary      Record a payment
// @Description  amount may be a number or a display string such as "$2,000"; it is sent upstream as a number.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body forms.PaymentForm true "Payment"
// @Success      201 {object} response.StandardApiResponse{data=Payment}
// @Failure      400 {object} response.StandardApiResponse
// @Router       /payment/create [post]
func (c *Controller) CreatePayment(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.PaymentForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	payment, message, err := c.service.Create(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create payment")
		return
	}
	response.RespondCreated(ctx, message, payment)
}

func (c *Controller) UpdatePayment(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.PaymentForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	payment, message, err := c.service.Update(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update payment")
		return
	}
	response.RespondOK(ctx, message, payment)
}

func (c *Controller) DeletePayment(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	message, err := c.service.Delete(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to delete payment")
		return
	}
	response.RespondOK(ctx, message, nil)
}
