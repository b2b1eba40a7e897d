package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

type gatewayRepository struct {
	db                   *pgxpool.Pool
	hasRelationshipTable bool
}

// NewGatewayRepository probes the optional relationship table once, so later
// lookups never have to treat a missing relation as an exceptional case.
func NewGatewayRepository(ctx context.Context, database *pgxpool.Pool) (domain.Gateway, error) {
	var rel *string
	err := database.QueryRow(ctx, `SELECT to_regclass('public.parent_student_relationships')::text;`).Scan(&rel)
	if err != nil {
		return nil, fmt.Errorf("could not probe relationship table: %v", err)
	}

	return &gatewayRepository{
		db:                   database,
		hasRelationshipTable: rel != nil,
	}, nil
}

func (g *gatewayRepository) HasRelationshipTable() bool {
	return g.hasRelationshipTable
}

const userColumns = `id, name, email, role, phone, linked_parent_of, linked_teacher_id, tenant_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.LinkedParentOf, &u.LinkedTeacherID, &u.TenantID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not scan user: %v", err)
	}
	return &u, nil
}

func (g *gatewayRepository) GetAdminUsers(ctx context.Context, tenantID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'admin' AND tenant_id = $1
		ORDER BY created_at, id;
	`

	rows, err := g.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get admin users: %v", err)
	}
	defer rows.Close()

	var admins []domain.User
	for rows.Next() {
		var u domain.User
		err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.LinkedParentOf, &u.LinkedTeacherID, &u.TenantID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan admin user: %v", err)
		}
		admins = append(admins, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return admins, nil
}

func (g *gatewayRepository) GetParentUserByStudentLink(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'parent' AND linked_parent_of = $1 AND tenant_id = $2
		LIMIT 1;
	`
	return scanUser(g.db.QueryRow(ctx, query, studentID, tenantID))
}

func (g *gatewayRepository) GetParentUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'parent' AND LOWER(email) = LOWER($1) AND tenant_id = $2
		LIMIT 1;
	`
	return scanUser(g.db.QueryRow(ctx, query, email, tenantID))
}

func (g *gatewayRepository) GetTeacherUserByLink(ctx context.Context, tenantID, teacherID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'teacher' AND linked_teacher_id = $1 AND tenant_id = $2
		LIMIT 1;
	`
	return scanUser(g.db.QueryRow(ctx, query, teacherID, tenantID))
}

func (g *gatewayRepository) GetUserByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND tenant_id = $2;
	`
	return scanUser(g.db.QueryRow(ctx, query, userID, tenantID))
}

func (g *gatewayRepository) GetParentUsers(ctx context.Context, tenantID uuid.UUID) ([]domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'parent' AND tenant_id = $1
		ORDER BY created_at, id;
	`

	rows, err := g.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get parent users: %v", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &u.LinkedParentOf, &u.LinkedTeacherID, &u.TenantID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan parent user: %v", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return users, nil
}

const studentColumns = `id, name, admission_no, class_name, parent_id, tenant_id, created_at, updated_at`

func (g *gatewayRepository) GetStudentByID(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL;
	`

	var s domain.Student
	err := g.db.QueryRow(ctx, query, studentID, tenantID).Scan(
		&s.ID, &s.Name, &s.AdmissionNo, &s.ClassName, &s.ParentID, &s.TenantID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get student: %v", err)
	}
	return &s, nil
}

func (g *gatewayRepository) GetAllStudents(ctx context.Context, tenantID uuid.UUID) ([]domain.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id;
	`

	rows, err := g.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get all students: %v", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		err := rows.Scan(&s.ID, &s.Name, &s.AdmissionNo, &s.ClassName, &s.ParentID, &s.TenantID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan student: %v", err)
		}
		students = append(students, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return students, nil
}

const parentColumns = `id, name, email, relation, student_id, tenant_id, created_at, updated_at`

// GetParentProfilesByStudent preserves profile insertion order; the resolver's
// email fallback depends on it.
func (g *gatewayRepository) GetParentProfilesByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]domain.Parent, error) {
	query := `
		SELECT ` + parentColumns + `
		FROM parents
		WHERE student_id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		ORDER BY created_at, id;
	`

	rows, err := g.db.Query(ctx, query, studentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get parent profiles: %v", err)
	}
	defer rows.Close()

	var parents []domain.Parent
	for rows.Next() {
		var p domain.Parent
		err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Relation, &p.StudentID, &p.TenantID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan parent profile: %v", err)
		}
		parents = append(parents, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return parents, nil
}

func (g *gatewayRepository) GetParentProfileByID(ctx context.Context, tenantID, parentID uuid.UUID) (*domain.Parent, error) {
	query := `
		SELECT ` + parentColumns + `
		FROM parents
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL;
	`

	var p domain.Parent
	err := g.db.QueryRow(ctx, query, parentID, tenantID).Scan(
		&p.ID, &p.Name, &p.Email, &p.Relation, &p.StudentID, &p.TenantID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get parent profile: %v", err)
	}
	return &p, nil
}

func (g *gatewayRepository) GetAllParentProfiles(ctx context.Context, tenantID uuid.UUID) ([]domain.Parent, error) {
	query := `
		SELECT ` + parentColumns + `
		FROM parents
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at, id;
	`

	rows, err := g.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get all parent profiles: %v", err)
	}
	defer rows.Close()

	var parents []domain.Parent
	for rows.Next() {
		var p domain.Parent
		err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Relation, &p.StudentID, &p.TenantID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("could not scan parent profile: %v", err)
		}
		parents = append(parents, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return parents, nil
}

func (g *gatewayRepository) GetPrimaryRelationship(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.ParentStudentRelationship, error) {
	if !g.hasRelationshipTable {
		return nil, nil
	}

	query := `
		SELECT id, parent_id, student_id, is_primary_contact, tenant_id
		FROM parent_student_relationships
		WHERE student_id = $1 AND tenant_id = $2
		ORDER BY is_primary_contact DESC
		LIMIT 1;
	`

	var rel domain.ParentStudentRelationship
	err := g.db.QueryRow(ctx, query, studentID, tenantID).Scan(
		&rel.ID, &rel.ParentID, &rel.StudentID, &rel.IsPrimaryContact, &rel.TenantID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get primary relationship: %v", err)
	}
	return &rel, nil
}

func (g *gatewayRepository) LinkParentUserToStudent(ctx context.Context, tenantID, userID, studentID uuid.UUID) error {
	query := `
		UPDATE users
		SET linked_parent_of = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3;
	`

	_, err := g.db.Exec(ctx, query, studentID, userID, tenantID)
	if err != nil {
		return fmt.Errorf("could not link parent user: %v", err)
	}
	return nil
}

func (g *gatewayRepository) SetStudentParentID(ctx context.Context, tenantID, studentID, parentID uuid.UUID) error {
	query := `
		UPDATE students
		SET parent_id = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL;
	`

	_, err := g.db.Exec(ctx, query, parentID, studentID, tenantID)
	if err != nil {
		return fmt.Errorf("could not set student parent_id: %v", err)
	}
	return nil
}
