package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

// NewEnforcer loads the RBAC model and the role-to-permission policy from
// disk. Policies are static per deployment; role assignment itself comes from
// the identity token.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	enforcer, err := casbin.NewEnforcer(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("load rbac enforcer: %w", err)
	}
	return enforcer, nil
}
