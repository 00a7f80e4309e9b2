package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/live-claims/internal/model"
)

// PickRepo provides data access to the picks table, the pick ledger for
// registered participants.  A row's absence is equivalent to a zero
// balance, so SetTx deletes rather than stores rows whose remaining
// count is zero.  All balance arithmetic happens in the service layer
// inside a transaction; this repository only reads and writes rows.
type PickRepo struct {
    db *sql.DB
}

// NewPickRepo returns a new PickRepo bound to the provided database.
func NewPickRepo(db *sql.DB) *PickRepo { return &PickRepo{db: db} }

// Get fetches the pick entry of one participant.  sql.ErrNoRows means
// the participant holds no picks.
func (r *PickRepo) Get(ctx context.Context, participantID uint64) (model.PickEntry, error) {
    const q = `SELECT participant_id, display_name, reason, remaining FROM picks WHERE participant_id = ? LIMIT 1`
    var e model.PickEntry
    err := r.db.QueryRowContext(ctx, q, participantID).Scan(&e.ParticipantID, &e.Name, &e.Reason, &e.Remaining)
    return e, err
}

// GetTx is Get inside an existing transaction.
func (r *PickRepo) GetTx(ctx context.Context, tx *sql.Tx, participantID uint64) (model.PickEntry, error) {
    const q = `SELECT participant_id, display_name, reason, remaining FROM picks WHERE participant_id = ? LIMIT 1`
    var e model.PickEntry
    err := tx.QueryRowContext(ctx, q, participantID).Scan(&e.ParticipantID, &e.Name, &e.Reason, &e.Remaining)
    return e, err
}

// SetTx writes a participant's balance inside a transaction.  A zero or
// negative remaining count removes the row; remaining is clamped so the
// stored value is never negative.
func (r *PickRepo) SetTx(ctx context.Context, tx *sql.Tx, e model.PickEntry) error {
    if e.Remaining <= 0 {
        _, err := tx.ExecContext(ctx, `DELETE FROM picks WHERE participant_id = ?`, e.ParticipantID)
        return err
    }
    const q = `REPLACE INTO picks (participant_id, display_name, reason, remaining) VALUES (?,?,?,?)`
    _, err := tx.ExecContext(ctx, q, e.ParticipantID, e.Name, e.Reason, e.Remaining)
    return err
}

// ListHolders returns every participant that still holds picks, largest
// balance first with a name tiebreak so trailer output is stable.  Used
// for the end-of-rebuild trailer.
func (r *PickRepo) ListHolders(ctx context.Context) ([]model.PickEntry, error) {
    const q = `SELECT participant_id, display_name, reason, remaining FROM picks
               WHERE remaining > 0 ORDER BY remaining DESC, LOWER(display_name)`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.PickEntry
    for rows.Next() {
        var e model.PickEntry
        if err := rows.Scan(&e.ParticipantID, &e.Name, &e.Reason, &e.Remaining); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// DeleteAllTx wipes the registered pick ledger inside a transaction.
func (r *PickRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
    _, err := tx.ExecContext(ctx, `DELETE FROM picks`)
    return err
}
