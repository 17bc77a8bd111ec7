// Package roles implements role management with capability assignment.
package roles

import (
	"github.com/andino-pos/andino-pos/internal/rbac"
	"github.com/andino-pos/andino-pos/internal/shared"
)

type roleForm struct {
	Name        string   `json:"name" validate:"required,min=3,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

type roleResponse struct {
	rbac.Role
	Permissions []string `json:"permissions"`
}

type listResponse struct {
	Data       []rbac.Role       `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

type showResponse struct {
	Data         roleResponse `json:"data"`
	Capabilities []string     `json:"capabilities"`
}

// capabilityNames renders the assignable capability catalog for role forms.
func capabilityNames() []string {
	caps := rbac.AllCapabilities()
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.String())
	}
	return names
}
