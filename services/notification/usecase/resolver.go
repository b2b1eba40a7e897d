package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/metrics"
)

// resolutionStrategy is one step of the fallback chain. A nil result with a
// nil error means "no match, fall through to the next strategy".
type resolutionStrategy struct {
	name string
	run  func(ctx context.Context, tenantID uuid.UUID, student *domain.Student) (*domain.ResolutionResult, error)
}

type resolverUC struct {
	gateway    domain.Gateway
	TimeOut    time.Duration
	strategies []resolutionStrategy
	log        *logrus.Logger
}

func NewResolverUseCase(gateway domain.Gateway, timeOut time.Duration) domain.ResolverUseCase {
	rUC := &resolverUC{
		gateway: gateway,
		TimeOut: timeOut,
		log:     config.GetLogrusInstance(),
	}
	rUC.strategies = []resolutionStrategy{
		{domain.StrategyLinkedParentOf, rUC.byDirectLink},
		{domain.StrategyParentsTable, rUC.byParentProfiles},
		{domain.StrategyStudentParentID, rUC.byStudentParentID},
		{domain.StrategyRelationshipTable, rUC.byRelationshipTable},
	}
	return rUC
}

// ResolveParentForStudent walks the strategy chain in order and short-circuits
// on the first match. A later strategy never overrides an earlier success.
// Every outcome, including backend trouble, comes back as a structured result.
func (rUC *resolverUC) ResolveParentForStudent(ctx context.Context, tenantID, studentID uuid.UUID) *domain.ResolutionResult {
	ctx, cancel := context.WithTimeout(ctx, rUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return &domain.ResolutionResult{Success: false, Error: "tenant id is required"}
	}

	student, err := rUC.gateway.GetStudentByID(ctx, tenantID, studentID)
	if err != nil {
		rUC.log.Warnf("could not fetch student %s: %v", studentID, err)
		return &domain.ResolutionResult{Success: false, Error: err.Error()}
	}
	if student == nil {
		return &domain.ResolutionResult{Success: false, Error: fmt.Sprintf("student %s not found", studentID)}
	}

	var details []string
	for _, strategy := range rUC.strategies {
		result, err := strategy.run(ctx, tenantID, student)
		if err != nil {
			rUC.log.Warnf("resolution strategy %s failed for student %s: %v", strategy.name, student.ID, err)
			details = append(details, fmt.Sprintf("%s: %v", strategy.name, err))
			continue
		}
		if result != nil {
			result.Success = true
			result.Method = strategy.name
			metrics.ResolverOutcomes.WithLabelValues(strategy.name).Inc()
			return result
		}
		details = append(details, fmt.Sprintf("%s: no match", strategy.name))
	}

	metrics.ResolverOutcomes.WithLabelValues("unresolved").Inc()
	return &domain.ResolutionResult{
		Success: false,
		Error:   fmt.Sprintf("no parent account could be resolved for student %s", student.Name),
		Details: details,
	}
}

func resultFromUser(user *domain.User) *domain.ResolutionResult {
	return &domain.ResolutionResult{
		ParentUserID: user.ID,
		ParentName:   user.Name,
		ParentEmail:  user.Email,
	}
}

func (rUC *resolverUC) byDirectLink(ctx context.Context, tenantID uuid.UUID, student *domain.Student) (*domain.ResolutionResult, error) {
	user, err := rUC.gateway.GetParentUserByStudentLink(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return resultFromUser(user), nil
}

func (rUC *resolverUC) byParentProfiles(ctx context.Context, tenantID uuid.UUID, student *domain.Student) (*domain.ResolutionResult, error) {
	profiles, err := rUC.gateway.GetParentProfilesByStudent(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		profile := &profiles[i]
		if profile.Email == nil || *profile.Email == "" {
			continue
		}

		user, err := rUC.gateway.GetParentUserByEmail(ctx, tenantID, *profile.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			result := resultFromUser(user)
			if result.ParentName == "" {
				result.ParentName = profile.Name
			}
			return result, nil
		}
	}

	return nil, nil
}

func (rUC *resolverUC) byStudentParentID(ctx context.Context, tenantID uuid.UUID, student *domain.Student) (*domain.ResolutionResult, error) {
	if student.ParentID == nil {
		return nil, nil
	}

	profile, err := rUC.gateway.GetParentProfileByID(ctx, tenantID, *student.ParentID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Email == nil || *profile.Email == "" {
		return nil, nil
	}

	user, err := rUC.gateway.GetParentUserByEmail(ctx, tenantID, *profile.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	result := resultFromUser(user)
	if result.ParentName == "" {
		result.ParentName = profile.Name
	}
	return result, nil
}

func (rUC *resolverUC) byRelationshipTable(ctx context.Context, tenantID uuid.UUID, student *domain.Student) (*domain.ResolutionResult, error) {
	// Deployment without the table: strategy not applicable, fall through.
	if !rUC.gateway.HasRelationshipTable() {
		return nil, nil
	}

	rel, err := rUC.gateway.GetPrimaryRelationship(ctx, tenantID, student.ID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, nil
	}

	profile, err := rUC.gateway.GetParentProfileByID(ctx, tenantID, rel.ParentID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Email == nil || *profile.Email == "" {
		return nil, nil
	}

	user, err := rUC.gateway.GetParentUserByEmail(ctx, tenantID, *profile.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	result := resultFromUser(user)
	if result.ParentName == "" {
		result.ParentName = profile.Name
	}
	return result, nil
}
