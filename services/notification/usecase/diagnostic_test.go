package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

// brokenLinkFixture seeds a student whose parent account exists and is
// reachable by profile email but was never linked, and whose parent_id
// backfill is missing. Both repairs apply to it.
func brokenLinkFixture() (uuid.UUID, *fakeGateway, domain.Student) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", AdmissionNo: "A-101", TenantID: tenant}
	profile := domain.Parent{ID: uuid.New(), Name: "Ravi Rao", Email: strPtr("ravi@example.com"), StudentID: student.ID, TenantID: tenant}
	parent := domain.User{ID: uuid.New(), Name: "Ravi Rao", Email: "ravi@example.com", Role: domain.RoleParent, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}
	gw.parents = []domain.Parent{profile}
	gw.users = []domain.User{parent}
	return tenant, gw, student
}

func TestAnalyzeReportsBrokenLinks(t *testing.T) {
	tenant, gw, _ := brokenLinkFixture()
	dUC := NewDiagnosticUseCase(gw, time.Second)

	analysis, err := dUC.Analyze(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.TotalStudents != 1 || analysis.StudentsWithParentProfile != 1 {
		t.Errorf("unexpected student counts: %+v", analysis)
	}
	if analysis.StudentsFullyLinked != 0 {
		t.Errorf("expected no fully linked students, got %d", analysis.StudentsFullyLinked)
	}
	if analysis.UnlinkedParentUsers != 1 {
		t.Errorf("expected 1 unlinked parent account, got %d", analysis.UnlinkedParentUsers)
	}
	if len(analysis.Issues) == 0 {
		t.Error("expected the broken link to surface as an issue")
	}
	if len(analysis.Recommendations) == 0 {
		t.Error("expected a repair recommendation")
	}
}

func TestAnalyzeStudentWithoutProfile(t *testing.T) {
	tenant := uuid.New()
	gw := newFakeGateway()
	gw.students = []domain.Student{{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}}
	dUC := NewDiagnosticUseCase(gw, time.Second)

	analysis, err := dUC.Analyze(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.StudentsWithoutProfile != 1 {
		t.Errorf("expected 1 student without profile, got %d", analysis.StudentsWithoutProfile)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	tenant, gw, student := brokenLinkFixture()
	dUC := NewDiagnosticUseCase(gw, time.Second)

	first, err := dUC.Repair(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Link backfill plus parent_id backfill.
	if len(first.Fixes) != 2 {
		t.Fatalf("expected 2 fixes on the first pass, got %d: %+v", len(first.Fixes), first.Fixes)
	}

	if gw.users[0].LinkedParentOf == nil || *gw.users[0].LinkedParentOf != student.ID {
		t.Error("parent account was not linked to the student")
	}
	if gw.students[0].ParentID == nil || *gw.students[0].ParentID != gw.parents[0].ID {
		t.Error("student parent_id was not backfilled")
	}

	second, err := dUC.Repair(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error on the second pass: %v", err)
	}
	if len(second.Fixes) != 0 {
		t.Errorf("second pass must be a no-op, got %d fixes: %+v", len(second.Fixes), second.Fixes)
	}
}

func TestRepairSkipsAccountLinkedElsewhere(t *testing.T) {
	tenant := uuid.New()
	student := domain.Student{ID: uuid.New(), Name: "Asha Rao", TenantID: tenant}
	other := uuid.New()
	profile := domain.Parent{ID: uuid.New(), Name: "Ravi Rao", Email: strPtr("ravi@example.com"), StudentID: student.ID, TenantID: tenant}
	parent := domain.User{ID: uuid.New(), Email: "ravi@example.com", Role: domain.RoleParent, LinkedParentOf: &other, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{student}
	gw.parents = []domain.Parent{profile}
	gw.users = []domain.User{parent}

	dUC := NewDiagnosticUseCase(gw, time.Second)
	repairLog, err := dUC.Repair(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *gw.users[0].LinkedParentOf != other {
		t.Error("repair must never re-point an existing link")
	}
	if len(repairLog.Skipped) != 1 {
		t.Errorf("expected the conflict reported in Skipped, got %+v", repairLog.Skipped)
	}
}

func TestReadinessRoundTripThroughRepair(t *testing.T) {
	tenant, gw, student := brokenLinkFixture()
	dUC := NewDiagnosticUseCase(gw, time.Second)

	before, err := dUC.ReadinessSummary(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.Ready) != 0 || len(before.NotReady) != 1 {
		t.Fatalf("expected the student not ready before repair: %+v", before)
	}
	if len(before.NotReady[0].Missing) != 1 || before.NotReady[0].Missing[0] != domain.MissingLink {
		t.Errorf("expected missing reason %q, got %v", domain.MissingLink, before.NotReady[0].Missing)
	}

	if _, err := dUC.Repair(context.Background(), tenant); err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	after, err := dUC.ReadinessSummary(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after.Ready) != 1 || after.Ready[0].StudentID != student.ID {
		t.Errorf("expected the repaired student ready: %+v", after)
	}
	if len(after.NotReady) != 0 {
		t.Errorf("expected nothing left not ready: %+v", after.NotReady)
	}
}

func TestReadinessMissingReasons(t *testing.T) {
	tenant := uuid.New()
	noProfile := domain.Student{ID: uuid.New(), Name: "No Profile", TenantID: tenant}
	noUser := domain.Student{ID: uuid.New(), Name: "No User", TenantID: tenant}
	profile := domain.Parent{ID: uuid.New(), Name: "Ghost", Email: strPtr("ghost@example.com"), StudentID: noUser.ID, TenantID: tenant}

	gw := newFakeGateway()
	gw.students = []domain.Student{noProfile, noUser}
	gw.parents = []domain.Parent{profile}

	dUC := NewDiagnosticUseCase(gw, time.Second)
	summary, err := dUC.ReadinessSummary(context.Background(), tenant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 2 || len(summary.NotReady) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	byID := make(map[uuid.UUID][]string)
	for _, s := range summary.NotReady {
		byID[s.StudentID] = s.Missing
	}
	if got := byID[noProfile.ID]; len(got) != 1 || got[0] != domain.MissingParentRecord {
		t.Errorf("expected %q for the profile-less student, got %v", domain.MissingParentRecord, got)
	}
	if got := byID[noUser.ID]; len(got) != 2 || got[0] != domain.MissingParentUser || got[1] != domain.MissingLink {
		t.Errorf("expected [%q %q] for the user-less student, got %v", domain.MissingParentUser, domain.MissingLink, got)
	}
}

func TestDiagnosticsRequireTenant(t *testing.T) {
	dUC := NewDiagnosticUseCase(newFakeGateway(), time.Second)

	if _, err := dUC.Analyze(context.Background(), uuid.Nil); err == nil {
		t.Error("analyze must reject a missing tenant")
	}
	if _, err := dUC.Repair(context.Background(), uuid.Nil); err == nil {
		t.Error("repair must reject a missing tenant")
	}
	if _, err := dUC.ReadinessSummary(context.Background(), uuid.Nil); err == nil {
		t.Error("readiness must reject a missing tenant")
	}
}
