package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/live-claims/internal/model"
)

// GuestPickRepo provides data access to the guest_picks table, the pick
// ledger for unregistered guests keyed by display name.  Guest names
// are matched exactly (case preserved).  Unlike registered entries,
// guest rows persist at zero so reporting can still list who ran out.
type GuestPickRepo struct {
    db *sql.DB
}

// NewGuestPickRepo returns a new GuestPickRepo bound to the provided database.
func NewGuestPickRepo(db *sql.DB) *GuestPickRepo { return &GuestPickRepo{db: db} }

// Get fetches the pick entry of one guest.  sql.ErrNoRows means the
// guest is unknown.
func (r *GuestPickRepo) Get(ctx context.Context, name string) (model.GuestPickEntry, error) {
    const q = `SELECT guest_name, reason, remaining FROM guest_picks WHERE guest_name = ? LIMIT 1`
    var e model.GuestPickEntry
    err := r.db.QueryRowContext(ctx, q, name).Scan(&e.Name, &e.Reason, &e.Remaining)
    return e, err
}

// GetTx is Get inside an existing transaction.
func (r *GuestPickRepo) GetTx(ctx context.Context, tx *sql.Tx, name string) (model.GuestPickEntry, error) {
    const q = `SELECT guest_name, reason, remaining FROM guest_picks WHERE guest_name = ? LIMIT 1`
    var e model.GuestPickEntry
    err := tx.QueryRowContext(ctx, q, name).Scan(&e.Name, &e.Reason, &e.Remaining)
    return e, err
}

// SetTx writes a guest's balance inside a transaction.  Negative counts
// are clamped to zero; the row is kept either way.
func (r *GuestPickRepo) SetTx(ctx context.Context, tx *sql.Tx, e model.GuestPickEntry) error {
    if e.Remaining < 0 {
        e.Remaining = 0
    }
    const q = `REPLACE INTO guest_picks (guest_name, reason, remaining) VALUES (?,?,?)`
    _, err := tx.ExecContext(ctx, q, e.Name, e.Reason, e.Remaining)
    return err
}

// ListHolders returns every guest that still holds picks, largest
// balance first with a name tiebreak.
func (r *GuestPickRepo) ListHolders(ctx context.Context) ([]model.GuestPickEntry, error) {
    const q = `SELECT guest_name, reason, remaining FROM guest_picks
               WHERE remaining > 0 ORDER BY remaining DESC, LOWER(guest_name)`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.GuestPickEntry
    for rows.Next() {
        var e model.GuestPickEntry
        if err := rows.Scan(&e.Name, &e.Reason, &e.Remaining); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// DeleteAllTx wipes the guest pick ledger inside a transaction.
func (r *GuestPickRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM guest_picks`)
    return err
}
