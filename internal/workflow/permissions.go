// Package workflow is the single place where the role-gated state machine of
// the two request kinds is declared. Every screen-level role check in the
// callers goes through this table; adding a role or a transition means adding
// it here once.
package workflow

import (
	"errors"

	"github.com/clinsys/examflow/internal/domain"
)

var (
	ErrPermissionDenied  = errors.New("role is not allowed to perform this transition")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
)

type EntityKind string

const (
	KindExamRequest    EntityKind = "exam_request"
	KindCheckupRequest EntityKind = "checkup_request"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case KindExamRequest, KindCheckupRequest:
		return true
	}
	return false
}

type transitionKey struct {
	kind EntityKind
	from string
	to   string
}

// transitionRoles names the non-admin roles allowed to perform each legal
// transition. Admin is implicit everywhere: its permissions are the union of
// all role permissions. A (kind, from, to) absent from this map is illegal
// for every role.
var transitionRoles = map[transitionKey][]domain.Role{
	{KindExamRequest, "encaminhado", "executado"}: {domain.RoleRecepcao},
	// Self-transition: conduct edits on an executed exam request reuse the
	// transition path so they stay gated by the same role set.
	{KindExamRequest, "executado", "executado"}: {domain.RoleRecepcao},

	{KindCheckupRequest, "solicitado", "encaminhado"}:     {domain.RoleCheckup},
	{KindCheckupRequest, "encaminhado", "executado"}:      {domain.RoleRecepcao},
	{KindCheckupRequest, "executado", "laudos_prontos"}:   {domain.RoleRecepcao},
	{KindCheckupRequest, "laudos_prontos", "encaminhado"}: {domain.RoleCheckup},
}

// creationRoles names the non-admin roles allowed to create each kind, i.e.
// to enter its initial state.
var creationRoles = map[EntityKind][]domain.Role{
	KindExamRequest:    {domain.RoleParceiro},
	KindCheckupRequest: {domain.RoleCheckup},
}

// CanTransition reports whether role may move a record of kind from one
// status to another. Unknown roles, kinds and states are all denied.
func CanTransition(role domain.Role, kind EntityKind, from, to string) bool {
	roles, ok := transitionRoles[transitionKey{kind, from, to}]
	if !ok {
		return false
	}
	if role == domain.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the set of target states role may move a record
// of kind into from the given status. Empty for unknown roles and states.
func AllowedTransitions(role domain.Role, kind EntityKind, from string) []string {
	var targets []string
	for key := range transitionRoles {
		if key.kind != kind || key.from != from {
			continue
		}
		if CanTransition(role, kind, from, key.to) {
			targets = append(targets, key.to)
		}
	}
	return targets
}

// CanCreate reports whether role may create a record of kind.
func CanCreate(role domain.Role, kind EntityKind) bool {
	roles, ok := creationRoles[kind]
	if !ok {
		return false
	}
	if role == domain.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanDelete reports whether role may hard-delete a record of kind. Deletion
// is an admin-only escape hatch, not part of the lifecycle.
func CanDelete(role domain.Role, kind EntityKind) bool {
	return role == domain.RoleAdmin && kind.IsValid()
}
