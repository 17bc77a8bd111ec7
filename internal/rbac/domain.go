// Package rbac implements role based access control with typed capabilities.
package rbac

import (
	"fmt"
	"strings"
	"time"
)

// Module names an application area that capabilities are grouped under.
type Module string

const (
	ModuleCategory  Module = "category"
	ModuleSupplier  Module = "supplier"
	ModuleCustomer  Module = "customer"
	ModuleProduct   Module = "product"
	ModulePurchase  Module = "purchase"
	ModuleSale      Module = "sale"
	ModuleReport    Module = "report"
	ModuleUser      Module = "user"
	ModuleRole      Module = "role"
	ModuleDashboard Module = "dashboard"
)

// Action names an operation within a module.
type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionEditStatus   Action = "edit_status"
	ActionEditPassword Action = "edit_password"
)

// Capability is a (module, action) pair checked before every guarded endpoint.
type Capability struct {
	Module Module
	Action Action
}

// String renders the capability in its stored "module.action" form.
func (c Capability) String() string {
	return string(c.Module) + "." + string(c.Action)
}

// ParseCapability parses a stored "module.action" permission name.
func ParseCapability(s string) (Capability, error) {
	module, action, ok := strings.Cut(strings.TrimSpace(strings.ToLower(s)), ".")
	if !ok || module == "" || action == "" {
		return Capability{}, fmt.Errorf("rbac: malformed capability %q", s)
	}
	return Capability{Module: Module(module), Action: Action(action)}, nil
}

// AllCapabilities enumerates every assignable capability. Role management
// offers exactly this set; nothing is matched by ad hoc strings.
func AllCapabilities() []Capability {
	crud := []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}
	var caps []Capability
	for _, m := range []Module{ModuleCategory, ModuleSupplier, ModuleCustomer, ModuleProduct, ModulePurchase, ModuleSale, ModuleRole} {
		for _, a := range crud {
			caps = append(caps, Capability{Module: m, Action: a})
		}
	}
	for _, a := range append(crud, ActionEditStatus, ActionEditPassword) {
		caps = append(caps, Capability{Module: ModuleUser, Action: a})
	}
	caps = append(caps,
		Capability{Module: ModuleReport, Action: ActionView},
		Capability{Module: ModuleDashboard, Action: ActionView},
	)
	return caps
}

// AdminRole is the protected superuser role. It holds every capability
// implicitly and can neither be renamed nor deleted.
const AdminRole = "admin"

// Role represents a permission grouping assigned to users.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
