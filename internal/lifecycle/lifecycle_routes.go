package lifecycle

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/middleware"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
	rdb *redis.Client,
) {
	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	requests.Use(middleware.Idempotency(rdb))
	{
		requests.POST("", rbac.Authorize(enforcer, "leave", "create"), handler.Submit)
		requests.POST("/:id/withdraw", rbac.Authorize(enforcer, "leave", "withdraw"), handler.Withdraw)
		requests.GET("", rbac.Authorize(enforcer, "leave", "read"), handler.ListByEmployee)
		requests.GET("/:id", rbac.Authorize(enforcer, "leave", "read"), handler.GetByID)
	}

	steps := r.Group("/workflow-steps")
	steps.Use(middleware.AuthMiddleware())
	steps.Use(middleware.Idempotency(rdb))
	{
		steps.POST("/:id/approve", rbac.Authorize(enforcer, "leave", "approve"), handler.ApproveStep)
		steps.POST("/:id/reject", rbac.Authorize(enforcer, "leave", "approve"), handler.RejectStep)
	}
}
