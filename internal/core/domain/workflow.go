package domain

import "fmt"

type Role string

const (
	RoleUploader Role = "UPLOADER"
	RoleReviewer Role = "REVIEWER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

type DocumentState string

const (
	StateDraft     DocumentState = "DRAFT"
	StateSubmitted DocumentState = "SUBMITTED"
	StateInReview  DocumentState = "IN_REVIEW"
	StateApproved  DocumentState = "APPROVED"
	StateRejected  DocumentState = "REJECTED"
	StateArchived  DocumentState = "ARCHIVED"
)

// ParseRole rejects anything outside the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUploader, RoleReviewer, RoleApprover, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// ParseState rejects anything outside the closed state set.
func ParseState(raw string) (DocumentState, error) {
	switch DocumentState(raw) {
	case StateDraft, StateSubmitted, StateInReview, StateApproved, StateRejected, StateArchived:
		return DocumentState(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown document state %q", ErrInvalidInput, raw)
	}
}

type transitionEdge struct {
	from DocumentState
	to   DocumentState
}

// allowedTransitions is the full transition graph: every legal edge and the
// single role permitted to traverse it. A pair absent here is illegal
// regardless of role.
var allowedTransitions = map[transitionEdge]Role{
	{StateDraft, StateSubmitted}:    RoleUploader,
	{StateSubmitted, StateInReview}: RoleReviewer,
	{StateInReview, StateApproved}:  RoleApprover,
	{StateInReview, StateRejected}:  RoleApprover,
	{StateApproved, StateArchived}:  RoleAdmin,
}

// RequiredRole reports the role authorized for the exact (from, to) edge.
func RequiredRole(from, to DocumentState) (Role, bool) {
	role, ok := allowedTransitions[transitionEdge{from: from, to: to}]
	return role, ok
}

// ValidateTransition authorizes a requested transition. An unknown edge fails
// before any role check; a known edge requires the exact role listed for it.
// There is no role hierarchy and no admin override.
func ValidateTransition(from, to DocumentState, actorRole Role) error {
	required, ok := RequiredRole(from, to)
	if !ok {
		return fmt.Errorf("%w: no transition from %s to %s", ErrInvalidTransition, from, to)
	}
	if actorRole != required {
		return fmt.Errorf("%w: transition %s to %s requires role %s, actor has %s",
			ErrForbidden, from, to, required, actorRole)
	}
	return nil
}

// NextRoles lists the roles able to move a document out of the given state,
// derived from the transition graph. Empty for terminal states.
func NextRoles(state DocumentState) []Role {
	var roles []Role
	for edge, role := range allowedTransitions {
		if edge.from != state {
			continue
		}
		seen := false
		for _, r := range roles {
			if r == role {
				seen = true
				break
			}
		}
		if !seen {
			roles = append(roles, role)
		}
	}
	return roles
}
