package balance

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/middleware"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.POST("", rbac.Authorize(enforcer, "balance", "admin"), handler.Create)
		balances.POST("/accrue", rbac.Authorize(enforcer, "balance", "admin"), handler.Accrue)
		balances.GET("/employee/:employeeId", rbac.Authorize(enforcer, "balance", "read"), handler.GetByEmployee)
		balances.GET("/:id/transactions", rbac.Authorize(enforcer, "balance", "read"), handler.ListTransactions)
	}
}
