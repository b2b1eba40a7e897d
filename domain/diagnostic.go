package domain

import (
	"context"

	"github.com/google/uuid"
)

// Analysis is the report of one full relationship scan.
type Analysis struct {
	TotalStudents             int      `json:"total_students"`
	StudentsWithParentProfile int      `json:"students_with_parent_profile"`
	StudentsWithoutProfile    int      `json:"students_without_profile"`
	StudentsFullyLinked       int      `json:"students_fully_linked"`
	ParentUsers               int      `json:"parent_users"`
	LinkedParentUsers         int      `json:"linked_parent_users"`
	UnlinkedParentUsers       int      `json:"unlinked_parent_users"`
	Issues                    []string `json:"issues"`
	Recommendations           []string `json:"recommendations"`
}

type RepairFix struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Action      string    `json:"action"`
}

// RepairLog lists the writes one Repair pass performed. A second pass over an
// already-fixed dataset produces an empty Fixes list, never an error.
type RepairLog struct {
	Fixes   []RepairFix `json:"fixes"`
	Skipped []string    `json:"skipped"`
}

// Readiness reasons for NotReady students.
const (
	MissingParentRecord = "no parent record"
	MissingParentUser   = "no parent user"
	MissingLink         = "not linked"
)

type StudentReadiness struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Missing     []string  `json:"missing,omitempty"`
}

type ReadinessSummary struct {
	Ready    []StudentReadiness `json:"ready"`
	NotReady []StudentReadiness `json:"not_ready"`
	Total    int                `json:"total"`
}

type DiagnosticUseCase interface {
	Analyze(ctx context.Context, tenantID uuid.UUID) (*Analysis, error)
	Repair(ctx context.Context, tenantID uuid.UUID) (*RepairLog, error)
	ReadinessSummary(ctx context.Context, tenantID uuid.UUID) (*ReadinessSummary, error)
}
