package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/live-claims/internal/model"
	"github.com/iliyamo/live-claims/internal/utils"
)

// StaffRepo provides data access to the staff_accounts table.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// Create inserts a staff account and returns its ID.
func (r *StaffRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff_accounts (email, password_hash, role, created_at) VALUES (?,?,?,?)",
		email, hash, role, time.Now().UTC().Format(timeLayout))
	if err != nil {
		// 1062 = MySQL duplicate key; SQLite reports a UNIQUE constraint
		lower := strings.ToLower(err.Error())
		if strings.Contains(lower, "1062") || strings.Contains(lower, "unique") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.StaffAccount, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT id,email,password_hash,role,is_active,created_at FROM staff_accounts WHERE email=? LIMIT 1", email)
}

// GetByID fetches an account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.StaffAccount, error) {
	return r.get(ctx, "SELECT id,email,password_hash,role,is_active,created_at FROM staff_accounts WHERE id=? LIMIT 1", id)
}

func (r *StaffRepo) get(ctx context.Context, q string, arg any) (model.StaffAccount, error) {
	var (
		a  model.StaffAccount
		at string
	)
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &at)
	if err != nil {
		return model.StaffAccount{}, err
	}
	if ts, perr := time.Parse(timeLayout, at); perr == nil {
		a.CreatedAt = ts
	}
	return a, nil
}
