package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/audit"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/lifecycle"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/messaging/kafka"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/rbac"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Audit Core ---
	// Every repository below is wrapped so each row change lands in the
	// audit log inside the same transaction as the change itself.
	auditRecorder := audit.NewRecorder(db)
	auditRepo := audit.NewRepository(gormDB)

	// --- Repositories ---
	balanceRepo := balance.NewAuditedRepository(balance.NewRepository(gormDB, db), auditRecorder)
	workflowRepo := workflow.NewAuditedRepository(workflow.NewRepository(gormDB, db), auditRecorder)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer(
		filepath.Join("config", "rbac", "model.conf"),
		filepath.Join("config", "rbac", "policy.csv"),
	)
	if err != nil {
		return err
	}

	// --- Engines & Services ---
	balanceEngine := balance.NewEngine(balanceRepo)
	workflowEngine := workflow.NewEngine(workflowRepo)
	balanceService := balance.NewService(db, balanceRepo)
	lifecycleService := lifecycle.NewService(db, workflowEngine, balanceEngine, workflowRepo, outboxRepo)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService)
	lifecycleHandler := lifecycle.NewHandler(lifecycleService)
	auditHandler := audit.NewHandler(auditRepo)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		lifecycle.RegisterRoutes(api, lifecycleHandler, enforcer, rdb)
		balance.RegisterRoutes(api, balanceHandler, enforcer)
		audit.RegisterRoutes(api, auditHandler, enforcer)
	}

	return nil
}
