package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-payroll/internal/middleware"
	"go-payroll/internal/payslip"
	"go-payroll/internal/shared/connection"
)

// BuildApp connects the infrastructure and registers every module's routes
// on the router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	router.Use(
		middleware.RequestID(),
		middleware.RateLimitByIP(rate.Limit(50), 100),
		middleware.ContextLogger(zap.L()),
	)

	payslipCfg := payslip.Config{
		StorageDir:    os.Getenv("PAYSLIP_STORAGE_DIR"),
		PublicBaseURL: os.Getenv("PAYSLIP_BASE_URL"),
	}

	return registerModules(router, sqlDB, gormDB, redisClient, payslipCfg)
}
