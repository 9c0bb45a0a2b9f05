package audit

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
	entries := r.Group("/audit-entries")
	entries.Use(middleware.AuthMiddleware())
	{
		entries.GET("", rbac.Authorize(enforcer, "audit", "read"), handler.ListByEntity)
	}
}
