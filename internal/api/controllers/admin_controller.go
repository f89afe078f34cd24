package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"saasbase/internal/models/request_models"
	"saasbase/internal/services"
	"saasbase/pkg/utils"
)

type AdminController struct {
	adminService services.AdminServiceInterface
	reconciler   services.ReconcileService
}

func NewAdminController(adminService services.AdminServiceInterface, reconciler services.ReconcileService) *AdminController {
	return &AdminController{
		adminService: adminService,
		reconciler:   reconciler,
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}

// ListUsers godoc
// @Summary List users
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (a *AdminController) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	users, total, err := a.adminService.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"users": users, "total": total}, "Users listed successfully")
}

// SetForbidden godoc
// @Summary Toggle a user's forbidden flag
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.ForbiddenRequest true "Forbidden payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users/forbidden [post]
func (a *AdminController) SetForbidden(c *gin.Context) {
	var req request_models.ForbiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := a.adminService.SetForbidden(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "User updated successfully")
}

// ListRoles godoc
// @Summary List roles
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles [get]
func (a *AdminController) ListRoles(c *gin.Context) {
	roles, err := a.adminService.ListRoles(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, roles, "Roles listed successfully")
}

// UpsertRole godoc
// @Summary Create or update a role
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.RoleUpsertRequest true "Role payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles [post]
func (a *AdminController) UpsertRole(c *gin.Context) {
	var req request_models.RoleUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := a.adminService.UpsertRole(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Role saved successfully")
}

// DeleteRole godoc
// @Summary Delete a role
// @Tags Admin
// @Produce json
// @Param id path string true "Role id"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles/{id} [delete]
func (a *AdminController) DeleteRole(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.RespondError(c, http.StatusBadRequest, "id is required")
		return
	}
	if err := a.adminService.DeleteRole(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Role deleted successfully")
}

// ListOrders godoc
// @Summary List the payment ledger
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/billing [get]
func (a *AdminController) ListOrders(c *gin.Context) {
	page, size := pageParams(c)
	orders, total, err := a.adminService.ListOrders(c.Request.Context(), page, size)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"orders": orders, "total": total}, "Orders listed successfully")
}

// PingAifadian godoc
// @Summary Check Aifadian connectivity and credentials
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/billing/aifadian/ping [get]
func (a *AdminController) PingAifadian(c *gin.Context) {
	if err := a.reconciler.PingAifadian(c.Request.Context()); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Aifadian reachable")
}

// SyncAifadian godoc
// @Summary Backfill Aifadian orders through the reconciler
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AifadianSyncRequest true "Sync payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/billing/aifadian/sync [post]
func (a *AdminController) SyncAifadian(c *gin.Context) {
	var req request_models.AifadianSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	applied, err := a.reconciler.SyncAifadianOrders(c.Request.Context(), req.Page)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"processed": applied}, "Aifadian orders synced")
}
