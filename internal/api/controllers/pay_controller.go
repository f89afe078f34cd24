package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"saasbase/internal/services"
	"saasbase/pkg/utils"
)

type PayController struct {
	checkoutService services.CheckoutService
}

func NewPayController(checkoutService services.CheckoutService) *PayController {
	return &PayController{
		checkoutService: checkoutService,
	}
}

// CreateCheckoutIntent godoc
// @Summary Create a provider checkout redirect for a product
// @Description Builds a Stripe checkout session or an Aifadian order URL
// @Tags Payments
// @Produce json
// @Param product_id query string true "Product id"
// @Param type query string true "Provider" Enums(stripe, aifadian)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /pay [get]
func (p *PayController) CreateCheckoutIntent(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		utils.RespondError(c, http.StatusBadRequest, "product_id is required")
		return
	}
	provider := c.Query("type")
	if provider == "" {
		utils.RespondError(c, http.StatusBadRequest, "type is required")
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "user_id is required")
		return
	}

	intent, err := p.checkoutService.CreateCheckoutIntent(c.Request.Context(), userID, productID, provider)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}
