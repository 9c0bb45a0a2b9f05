package app

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/audit"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/messaging/kafka"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/connection"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow"
)

func BuildApp(router *gin.Engine) error {
	// 1. Setup Infrastructure
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

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	if err := gormDB.AutoMigrate(
		&balance.LeaveBalance{},
		&balance.BalanceTransaction{},
		&workflow.LeaveRequest{},
		&workflow.WorkflowStep{},
		&audit.Entry{},
		&kafka.OutboxEvent{},
	); err != nil {
		return err
	}
	zap.L().Info("schema migrated")

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	return registerModules(router, sqlDB, gormDB, redisClient)
}
