package domain

import (
	"context"

	"github.com/google/uuid"
)

// Strategy names reported in ResolutionResult.Method. Diagnostics key off
// these, so they are part of the contract.
const (
	StrategyLinkedParentOf    = "linked_parent_of"
	StrategyParentsTable      = "parents_table"
	StrategyStudentParentID   = "student_parent_id"
	StrategyRelationshipTable = "relationship_table"
)

// ResolutionResult is the outcome of one parent lookup. Not-found is a normal
// terminal state carried in Error/Details, never an error return.
type ResolutionResult struct {
	Success      bool      `json:"success"`
	ParentUserID uuid.UUID `json:"parent_user_id,omitempty"`
	ParentName   string    `json:"parent_name,omitempty"`
	ParentEmail  string    `json:"parent_email,omitempty"`
	Method       string    `json:"method,omitempty"`
	Error        string    `json:"error,omitempty"`
	Details      []string  `json:"details,omitempty"`
}

type ResolverUseCase interface {
	ResolveParentForStudent(ctx context.Context, tenantID, studentID uuid.UUID) *ResolutionResult
}
