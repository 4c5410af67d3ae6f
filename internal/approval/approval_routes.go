package approval

import (
	"github.com/gin-gonic/gin"

	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/pending", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.ListPending)
		approvals.POST("/:id/decide", middleware.RBACAuthorize(rbacService, "approval", "decide"), handler.Decide)
	}
}
