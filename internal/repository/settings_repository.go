package repository

import (
	"context"
	"database/sql"
)

// SettingsRepo is the generic persisted key/value map. It carries the
// session pointer, the panic state and any auxiliary pointers other
// components want to survive a restart.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// Get returns the value for a key; sql.ErrNoRows when unset.
func (r *SettingsRepo) Get(ctx context.Context, name string) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE name = ? LIMIT 1`, name).Scan(&v)
	return v, err
}

// Set stores or replaces a key.
func (r *SettingsRepo) Set(ctx context.Context, name, value string) error {
	_, err := r.DB.ExecContext(ctx,
		`REPLACE INTO settings (name, value) VALUES (?,?)`, name, value)
	return err
}

// Delete removes a key; deleting an absent key is not an error.
func (r *SettingsRepo) Delete(ctx context.Context, name string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM settings WHERE name = ?`, name)
	return err
}

// DeleteAllTx wipes the settings map inside a transaction.
func (r *SettingsRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM settings`)
	return err
}
