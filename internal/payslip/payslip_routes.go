package payslip

import (
	"github.com/gin-gonic/gin"

	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	payslips := r.Group("/payslips")
	payslips.Use(middleware.AuthMiddleware())
	{
		payslips.GET("/:id", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetById)
		payslips.GET("/:id/download", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.Download)
		payslips.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetAllByEmployee)
		payslips.GET("/pay-run/:payRunId", middleware.RBACAuthorize(rbacService, "payslip", "read"), handler.GetAllByPayRun)
	}
}
