package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"saasbase/internal/models/request_models"
	"saasbase/internal/services"
	"saasbase/pkg/utils"
)

type ProductController struct {
	productService services.ProductServiceInterface
}

func NewProductController(productService services.ProductServiceInterface) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListActive godoc
// @Summary List purchasable products
// @Tags Products
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /products [get]
func (p *ProductController) ListActive(c *gin.Context) {
	products, err := p.productService.ListActive(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, products, "Products listed successfully")
}

// List godoc
// @Summary List all products, including inactive
// @Tags Products
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products [get]
func (p *ProductController) List(c *gin.Context) {
	products, err := p.productService.List(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, products, "Products listed successfully")
}

// Upsert godoc
// @Summary Create or update a product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body request_models.ProductUpsertRequest true "Product payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products [post]
func (p *ProductController) Upsert(c *gin.Context) {
	var req request_models.ProductUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := p.productService.Upsert(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, product, "Product saved successfully")
}

// Delete godoc
// @Summary Delete a product
// @Tags Products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/products/{id} [delete]
func (p *ProductController) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.RespondError(c, http.StatusBadRequest, "id is required")
		return
	}
	if err := p.productService.Delete(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Product deleted successfully")
}
