package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// UserRepository handles user and department data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `u.id, u.name, u.email, u.password_hash, u.role, u.department_id, u.created_at`

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EmailExists reports whether an email is taken, optionally excluding one user.
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new user and sets its generated ID.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, department_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.DepartmentID,
	).Scan(&u.ID, &u.CreatedAt)
}

// Update rewrites a user's mutable fields. An empty passwordHash keeps the
// stored one.
func (r *UserRepository) Update(ctx context.Context, u *model.User, passwordHash string) error {
	if passwordHash != "" {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET name = $1, email = $2, role = $3, department_id = $4, password_hash = $5
			 WHERE id = $6`,
			u.Name, u.Email, u.Role, u.DepartmentID, passwordHash, u.ID)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, role = $3, department_id = $4
		 WHERE id = $5`,
		u.Name, u.Email, u.Role, u.DepartmentID, u.ID)
	return err
}

// Delete removes a user; related records cascade.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// List retrieves all users with their department names, newest first.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.role, u.department_id, d.department_name, u.created_at
		 FROM users u
		 LEFT JOIN departments d ON u.department_id = d.id
		 ORDER BY u.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.DepartmentID, &u.Department, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListDepartments retrieves all active departments ordered by name.
func (r *UserRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, department_name, COALESCE(description, ''), is_active
		 FROM departments
		 WHERE is_active
		 ORDER BY department_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.IsActive); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}
