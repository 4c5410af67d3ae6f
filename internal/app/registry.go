package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-payroll/internal/approval"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/deduction"
	"go-payroll/internal/earning"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/payrun"
	"go-payroll/internal/payslip"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/shared/sequence"
	"go-payroll/internal/tax"
	"go-payroll/internal/timesheet"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	payslipCfg payslip.Config,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	earningRepo := earning.NewRepository(gormDB)
	deductionRepo := deduction.NewRepository(gormDB)
	taxRepo := tax.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	payRunRepo := payrun.NewRepository(gormDB)
	payslipRepo := payslip.NewRepository(gormDB)
	sequenceRepo := sequence.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	hoursProvider := timesheet.NewProvider(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	auditLogger := bootstrap.NewStdoutAuditLogger()
	sequenceGen := sequence.NewGenerator(sequenceRepo)
	approvalService := approval.NewService(db, approvalRepo)
	payRunService := payrun.NewService(db, payRunRepo, payrun.Dependencies{
		Employees:  employeeRepo,
		Earnings:   earningRepo,
		Deductions: deductionRepo,
		Taxes:      taxRepo,
		Hours:      hoursProvider,
		Approvals:  approvalService,
		Sequences:  sequenceGen,
		Outbox:     outboxRepo,
		Audit:      auditLogger,
	})
	payslipService := payslip.NewService(db, payslipRepo, payRunRepo, sequenceGen, outboxRepo, payslipCfg)

	// --- Handlers ---
	approvalHandler := approval.NewHandler(approvalService)
	payRunHandler := payrun.NewHandlerWithRedis(payRunService, rdb)
	payslipHandler := payslip.NewHandler(payslipService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		approval.RegisterRoutes(api, approvalHandler, rbacService)
		payrun.RegisterRoutes(api, payRunHandler, rbacService, rdb)
		payslip.RegisterRoutes(api, payslipHandler, rbacService)
	}

	rbac.RegisterRoutes(router, rbacHandler)

	return nil
}
