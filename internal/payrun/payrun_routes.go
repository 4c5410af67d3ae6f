package payrun

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/pay-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.GET("", middleware.RBACAuthorize(rbacService, "payrun", "read"), handler.GetAll)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, "payrun", "read"), handler.GetByID)
		runs.GET("/:id/items", middleware.RBACAuthorize(rbacService, "payrun", "read"), handler.GetItems)
		if redisClient != nil {
			runs.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payrun", "create"),
				handler.Create,
			)
		} else {
			runs.POST("", middleware.RBACAuthorize(rbacService, "payrun", "create"), handler.Create)
		}
		runs.POST("/:id/calculate", middleware.RBACAuthorize(rbacService, "payrun", "calculate"), handler.Calculate)
		runs.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "payrun", "submit"), handler.SubmitForApproval)
		runs.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payrun", "approve"), handler.Approve)
		runs.POST("/:id/complete", middleware.RBACAuthorize(rbacService, "payrun", "complete"), handler.Complete)
		runs.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "payrun", "cancel"), handler.Cancel)
		runs.POST("/:id/items/:itemId/exclude", middleware.RBACAuthorize(rbacService, "payrun", "update"), handler.ExcludeItem)
		runs.POST("/:id/items/:itemId/reset", middleware.RBACAuthorize(rbacService, "payrun", "update"), handler.ResetItem)
		runs.POST("/:id/items/:itemId/recalculate", middleware.RBACAuthorize(rbacService, "payrun", "calculate"), handler.RecalculateItem)
	}
}
