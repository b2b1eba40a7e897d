package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

func TestResolveDirectLinkShortCircuits(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", AdmissionNo: "A-101", TenantID: tenant}
	linked := student.ID
	parent := domain.User{ID: uuid.New(), Name: "Ravi Rao", Email: "ravi@example.com", Role: domain.RoleParent, LinkedParentOf: &linked, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}
	gw.users = []domain.User{parent}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if !result.Success {
		t.Fatalf("expected resolution to succeed, got error: %s", result.Error)
	}
	if result.Method != domain.StrategyLinkedParentOf {
		t.Errorf("expected method %q, got %q", domain.StrategyLinkedParentOf, result.Method)
	}
	if result.ParentUserID != parent.ID {
		t.Errorf("expected parent user %s, got %s", parent.ID, result.ParentUserID)
	}
	if result.ParentEmail != parent.Email {
		t.Errorf("expected parent email %q, got %q", parent.Email, result.ParentEmail)
	}

	// First strategy matched, so none of the fallback reads may run.
	if gw.calls["GetParentProfilesByStudent"] != 0 {
		t.Errorf("profiles table was queried %d times after a direct-link hit", gw.calls["GetParentProfilesByStudent"])
	}
	if gw.calls["GetPrimaryRelationship"] != 0 {
		t.Errorf("relationship table was queried %d times after a direct-link hit", gw.calls["GetPrimaryRelationship"])
	}
}

func TestResolveFallsBackToProfileEmail(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}
	profile := domain.Parent{ID: uuid.New(), Name: "Ravi Rao", Email: strPtr("ravi@example.com"), StudentID: student.ID, TenantID: tenant}
	parent := domain.User{ID: uuid.New(), Name: "Ravi Rao", Email: "Ravi@Example.com", Role: domain.RoleParent, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}
	gw.parents = []domain.Parent{profile}
	gw.users = []domain.User{parent}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if !result.Success {
		t.Fatalf("expected resolution to succeed, got error: %s", result.Error)
	}
	if result.Method != domain.StrategyParentsTable {
		t.Errorf("expected method %q, got %q", domain.StrategyParentsTable, result.Method)
	}
	if result.ParentUserID != parent.ID {
		t.Errorf("expected parent user %s, got %s", parent.ID, result.ParentUserID)
	}
}

func TestResolveViaStudentParentID(t *testing.T) {
	tenant := uuid.New()
	profile := domain.Parent{ID: uuid.New(), Name: "Ravi Rao", Email: strPtr("ravi@example.com"), StudentID: uuid.New(), TenantID: tenant}
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", ParentID: &profile.ID, TenantID: tenant}
	parent := domain.User{ID: uuid.New(), Email: "ravi@example.com", Role: domain.RoleParent, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}
	gw.parents = []domain.Parent{profile}
	gw.users = []domain.User{parent}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if !result.Success {
		t.Fatalf("expected resolution to succeed, got error: %s", result.Error)
	}
	if result.Method != domain.StrategyStudentParentID {
		t.Errorf("expected method %q, got %q", domain.StrategyStudentParentID, result.Method)
	}
	// The account row has no name, so the profile name backfills it.
	if result.ParentName != profile.Name {
		t.Errorf("expected parent name %q, got %q", profile.Name, result.ParentName)
	}
}

func TestResolveViaRelationshipTable(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}
	profile := domain.Parent{ID: uuid.New(), Name: "Ravi Rao", Email: strPtr("ravi@example.com"), StudentID: uuid.New(), TenantID: tenant}
	parent := domain.User{ID: uuid.New(), Name: "Ravi Rao", Email: "ravi@example.com", Role: domain.RoleParent, TenantID: tenant}

	gw := newFakeGateway()
	gw.relationshipTable = true
	gw.students = []domain.Student{student}
	gw.parents = []domain.Parent{profile}
	gw.users = []domain.User{parent}
	gw.relationships = []domain.ParentStudentRelationship{
		{ID: uuid.New(), ParentID: profile.ID, StudentID: student.ID, IsPrimaryContact: true, TenantID: tenant},
	}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if !result.Success {
		t.Fatalf("expected resolution to succeed, got error: %s", result.Error)
	}
	if result.Method != domain.StrategyRelationshipTable {
		t.Errorf("expected method %q, got %q", domain.StrategyRelationshipTable, result.Method)
	}
}

func TestResolveExhaustedChainReportsEveryStrategy(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if result.Success {
		t.Fatal("expected resolution to fail for a student with no parent data")
	}
	if result.Error == "" {
		t.Error("expected a failure message")
	}
	if len(result.Details) != 4 {
		t.Errorf("expected one detail per strategy, got %d: %v", len(result.Details), result.Details)
	}
}

func TestResolveWithoutRelationshipTableSkipsIt(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}

	rUC := NewResolverUseCase(gw, time.Second)
	result := rUC.ResolveParentForStudent(context.Background(), tenant, student.ID)

	if result.Success {
		t.Fatal("expected resolution to fail")
	}
	if gw.calls["GetPrimaryRelationship"] != 0 {
		t.Errorf("relationship table was queried %d times despite being absent", gw.calls["GetPrimaryRelationship"])
	}
}

func TestResolveUnknownStudent(t *testing.T) {
	gw := newFakeGateway()
	rUC := NewResolverUseCase(gw, time.Second)

	result := rUC.ResolveParentForStudent(context.Background(), uuid.New(), uuid.New())
	if result.Success {
		t.Fatal("expected resolution to fail for an unknown student")
	}
}

func TestResolveRequiresTenant(t *testing.T) {
	gw := newFakeGateway()
	rUC := NewResolverUseCase(gw, time.Second)

	result := rUC.ResolveParentForStudent(context.Background(), uuid.Nil, uuid.New())
	if result.Success {
		t.Fatal("expected resolution to fail without a tenant")
	}
	if gw.calls["GetStudentByID"] != 0 {
		t.Error("no storage call should happen without a tenant")
	}
}
