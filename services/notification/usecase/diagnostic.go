package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/metrics"
)

type diagnosticUC struct {
	gateway domain.Gateway
	TimeOut time.Duration
	log     *logrus.Logger
}

func NewDiagnosticUseCase(gateway domain.Gateway, timeOut time.Duration) domain.DiagnosticUseCase {
	return &diagnosticUC{
		gateway: gateway,
		TimeOut: timeOut,
		log:     config.GetLogrusInstance(),
	}
}

// relationshipIndex is one full pull of the three tables the diagnostics work
// from, indexed for repeated per-student lookups.
type relationshipIndex struct {
	students          []domain.Student
	profilesByStudent map[uuid.UUID][]domain.Parent
	usersByEmail      map[string]*domain.User
	linkedByStudent   map[uuid.UUID]*domain.User
	parentUsers       []domain.User
}

func (dUC *diagnosticUC) buildIndex(ctx context.Context, tenantID uuid.UUID) (*relationshipIndex, error) {
	students, err := dUC.gateway.GetAllStudents(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	profiles, err := dUC.gateway.GetAllParentProfiles(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	parentUsers, err := dUC.gateway.GetParentUsers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	idx := &relationshipIndex{
		students:          students,
		profilesByStudent: make(map[uuid.UUID][]domain.Parent),
		usersByEmail:      make(map[string]*domain.User),
		linkedByStudent:   make(map[uuid.UUID]*domain.User),
		parentUsers:       parentUsers,
	}

	for _, profile := range profiles {
		idx.profilesByStudent[profile.StudentID] = append(idx.profilesByStudent[profile.StudentID], profile)
	}

	for i := range parentUsers {
		user := &parentUsers[i]
		if _, exists := idx.usersByEmail[strings.ToLower(user.Email)]; !exists {
			idx.usersByEmail[strings.ToLower(user.Email)] = user
		}
		if user.LinkedParentOf != nil {
			if _, exists := idx.linkedByStudent[*user.LinkedParentOf]; !exists {
				idx.linkedByStudent[*user.LinkedParentOf] = user
			}
		}
	}

	return idx, nil
}

// emailMatch finds the first parent account reachable through the student's
// profile emails, profile order preserved.
func (idx *relationshipIndex) emailMatch(studentID uuid.UUID) *domain.User {
	for _, profile := range idx.profilesByStudent[studentID] {
		if profile.Email == nil || *profile.Email == "" {
			continue
		}
		if user, ok := idx.usersByEmail[strings.ToLower(*profile.Email)]; ok {
			return user
		}
	}
	return nil
}

func (dUC *diagnosticUC) Analyze(ctx context.Context, tenantID uuid.UUID) (*domain.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, dUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}

	idx, err := dUC.buildIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	analysis := &domain.Analysis{
		TotalStudents:   len(idx.students),
		ParentUsers:     len(idx.parentUsers),
		Issues:          []string{},
		Recommendations: []string{},
	}

	var missingParentID int
	for _, student := range idx.students {
		profiles := idx.profilesByStudent[student.ID]
		if len(profiles) == 0 {
			analysis.StudentsWithoutProfile++
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("student %s (%s) has no parent profile", student.Name, student.AdmissionNo))
		} else {
			analysis.StudentsWithParentProfile++
		}

		if student.ParentID == nil && len(profiles) > 0 {
			missingParentID++
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("student %s has a parent profile but no parent_id backfill", student.Name))
		}

		if idx.linkedByStudent[student.ID] != nil {
			analysis.StudentsFullyLinked++
			continue
		}

		if match := idx.emailMatch(student.ID); match != nil {
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("parent account %s for student %s is reachable by email but not linked", match.Email, student.Name))
		} else if len(profiles) > 0 {
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("no parent account matches any profile email for student %s", student.Name))
		}
	}

	for _, user := range idx.parentUsers {
		if user.LinkedParentOf != nil {
			analysis.LinkedParentUsers++
		} else {
			analysis.UnlinkedParentUsers++
			analysis.Issues = append(analysis.Issues, fmt.Sprintf("parent account %s is not linked to any student", user.Email))
		}
	}

	if analysis.StudentsFullyLinked < analysis.TotalStudents {
		analysis.Recommendations = append(analysis.Recommendations, "run repair to backfill linked_parent_of for email-resolvable parent accounts")
	}
	if missingParentID > 0 {
		analysis.Recommendations = append(analysis.Recommendations, "run repair to backfill students.parent_id from existing parent profiles")
	}
	if analysis.StudentsWithoutProfile > 0 {
		analysis.Recommendations = append(analysis.Recommendations, "create parent profiles for students that have none; repair cannot invent them")
	}

	return analysis, nil
}

// Repair applies the two idempotent backfills. Re-running it on a fixed
// dataset performs zero writes and reports zero fixes.
func (dUC *diagnosticUC) Repair(ctx context.Context, tenantID uuid.UUID) (*domain.RepairLog, error) {
	ctx, cancel := context.WithTimeout(ctx, dUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}

	analysis, err := dUC.Analyze(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	dUC.log.Infof("repair starting: %d issues found across %d students", len(analysis.Issues), analysis.TotalStudents)

	idx, err := dUC.buildIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	repairLog := &domain.RepairLog{
		Fixes:   []domain.RepairFix{},
		Skipped: []string{},
	}

	for _, student := range idx.students {
		profiles := idx.profilesByStudent[student.ID]

		if idx.linkedByStudent[student.ID] == nil {
			if match := idx.emailMatch(student.ID); match != nil {
				if match.LinkedParentOf == nil {
					if err := dUC.gateway.LinkParentUserToStudent(ctx, tenantID, match.ID, student.ID); err != nil {
						return nil, err
					}
					studentID := student.ID
					match.LinkedParentOf = &studentID
					idx.linkedByStudent[student.ID] = match
					metrics.RepairsApplied.Inc()
					repairLog.Fixes = append(repairLog.Fixes, domain.RepairFix{
						StudentID:   student.ID,
						StudentName: student.Name,
						Action:      fmt.Sprintf("linked parent account %s", match.Email),
					})
				} else {
					repairLog.Skipped = append(repairLog.Skipped, fmt.Sprintf("parent account %s matches student %s but is already linked to another student", match.Email, student.Name))
				}
			}
		}

		if student.ParentID == nil && len(profiles) > 0 {
			if err := dUC.gateway.SetStudentParentID(ctx, tenantID, student.ID, profiles[0].ID); err != nil {
				return nil, err
			}
			metrics.RepairsApplied.Inc()
			repairLog.Fixes = append(repairLog.Fixes, domain.RepairFix{
				StudentID:   student.ID,
				StudentName: student.Name,
				Action:      fmt.Sprintf("backfilled parent_id with profile %s", profiles[0].ID),
			})
		}
	}

	return repairLog, nil
}

// ReadinessSummary classifies each student against the fully-linked
// predicate: a direct parent account link is what makes a student ready.
func (dUC *diagnosticUC) ReadinessSummary(ctx context.Context, tenantID uuid.UUID) (*domain.ReadinessSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, dUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}

	idx, err := dUC.buildIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &domain.ReadinessSummary{
		Ready:    []domain.StudentReadiness{},
		NotReady: []domain.StudentReadiness{},
		Total:    len(idx.students),
	}

	for _, student := range idx.students {
		if idx.linkedByStudent[student.ID] != nil {
			summary.Ready = append(summary.Ready, domain.StudentReadiness{
				StudentID:   student.ID,
				StudentName: student.Name,
			})
			continue
		}

		var missing []string
		if len(idx.profilesByStudent[student.ID]) == 0 {
			missing = append(missing, domain.MissingParentRecord)
		} else {
			if idx.emailMatch(student.ID) == nil {
				missing = append(missing, domain.MissingParentUser)
			}
			missing = append(missing, domain.MissingLink)
		}

		summary.NotReady = append(summary.NotReady, domain.StudentReadiness{
			StudentID:   student.ID,
			StudentName: student.Name,
			Missing:     missing,
		})
	}

	return summary, nil
}
