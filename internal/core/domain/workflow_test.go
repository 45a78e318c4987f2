package domain

import "testing"

var allStates = []DocumentState{
	StateDraft, StateSubmitted, StateInReview, StateApproved, StateRejected, StateArchived,
}

var allRoles = []Role{RoleUploader, RoleReviewer, RoleApprover, RoleAdmin}

var legalEdges = map[[2]DocumentState]Role{
	{StateDraft, StateSubmitted}:    RoleUploader,
	{StateSubmitted, StateInReview}: RoleReviewer,
	{StateInReview, StateApproved}:  RoleApprover,
	{StateInReview, StateRejected}:  RoleApprover,
	{StateApproved, StateArchived}:  RoleAdmin,
}

func TestValidateTransitionRejectsEveryUnknownEdgeForEveryRole(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			if _, ok := legalEdges[[2]DocumentState{from, to}]; ok {
				continue
			}
			for _, role := range allRoles {
				err := ValidateTransition(from, to, role)
				if !IsKind(err, ErrInvalidTransition) {
					t.Fatalf("ValidateTransition(%s, %s, %s) = %v, want ErrInvalidTransition", from, to, role, err)
				}
			}
		}
	}
}

func TestValidateTransitionRequiresExactRole(t *testing.T) {
	for edge, required := range legalEdges {
		for _, role := range allRoles {
			err := ValidateTransition(edge[0], edge[1], role)
			if role == required {
				if err != nil {
					t.Fatalf("ValidateTransition(%s, %s, %s) = %v, want success", edge[0], edge[1], role, err)
				}
				continue
			}
			if !IsKind(err, ErrForbidden) {
				t.Fatalf("ValidateTransition(%s, %s, %s) = %v, want ErrForbidden", edge[0], edge[1], role, err)
			}
		}
	}
}

func TestAdminHasNoImplicitOverride(t *testing.T) {
	err := ValidateTransition(StateInReview, StateApproved, RoleAdmin)
	if !IsKind(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for admin on approver edge, got %v", err)
	}
}

func TestTransitionIsNotTransitive(t *testing.T) {
	// DRAFT -> SUBMITTED and SUBMITTED -> IN_REVIEW both exist, but the
	// composed pair is not an edge.
	for _, role := range allRoles {
		err := ValidateTransition(StateDraft, StateInReview, role)
		if !IsKind(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition for DRAFT -> IN_REVIEW as %s, got %v", role, err)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []DocumentState{StateRejected, StateArchived} {
		for _, to := range allStates {
			if _, ok := RequiredRole(terminal, to); ok {
				t.Fatalf("expected no outgoing edge from %s, found %s -> %s", terminal, terminal, to)
			}
		}
	}
}

func TestRequiredRoleMatchesGraph(t *testing.T) {
	for edge, want := range legalEdges {
		got, ok := RequiredRole(edge[0], edge[1])
		if !ok || got != want {
			t.Fatalf("RequiredRole(%s, %s) = (%s, %v), want (%s, true)", edge[0], edge[1], got, ok, want)
		}
	}
}

func TestNextRolesDerivedFromGraph(t *testing.T) {
	cases := map[DocumentState][]Role{
		StateDraft:     {RoleUploader},
		StateSubmitted: {RoleReviewer},
		StateInReview:  {RoleApprover},
		StateApproved:  {RoleAdmin},
		StateRejected:  nil,
		StateArchived:  nil,
	}
	for state, want := range cases {
		got := NextRoles(state)
		if len(got) != len(want) {
			t.Fatalf("NextRoles(%s) = %v, want %v", state, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("NextRoles(%s) = %v, want %v", state, got, want)
			}
		}
	}
}

func TestParseRoleAndStateAreClosedWorld(t *testing.T) {
	if _, err := ParseRole("UPLOADER"); err != nil {
		t.Fatalf("ParseRole(UPLOADER) error = %v", err)
	}
	if _, err := ParseRole("uploader"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for lowercase role, got %v", err)
	}
	if _, err := ParseState("IN_REVIEW"); err != nil {
		t.Fatalf("ParseState(IN_REVIEW) error = %v", err)
	}
	if _, err := ParseState("PUBLISHED"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown state, got %v", err)
	}
}
