package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/live-claims/internal/model"
)

// timeLayout is the storage format for every timestamp column. Both
// dialects store timestamps as text and all comparisons happen in Go.
const timeLayout = time.RFC3339

// ClaimRepo provides data access to the claims table. Claims are
// append-mostly: inserted on commit, deleted by unassign or wipe, and
// updated only to record the rendered announcement handle.
type ClaimRepo struct{ DB *sql.DB }

func NewClaimRepo(db *sql.DB) *ClaimRepo { return &ClaimRepo{DB: db} }

const claimColumns = `id, claimed_at, session_id, participant_id, claimant_name, reason, category, item_code, item_number, wm_filename, raw_filename, log_message_id`

func scanClaim(row interface{ Scan(...any) error }) (model.Claim, error) {
	var (
		c      model.Claim
		at     string
		pid    sql.NullInt64
		catStr string
	)
	err := row.Scan(&c.ID, &at, &c.SessionID, &pid, &c.ClaimantName, &c.Reason, &catStr, &c.ItemCode, &c.ItemNumber, &c.WMFilename, &c.RawFilename, &c.LogMessageID)
	if err != nil {
		return model.Claim{}, err
	}
	if ts, perr := time.Parse(timeLayout, at); perr == nil {
		c.ClaimedAt = ts
	}
	if pid.Valid {
		v := uint64(pid.Int64)
		c.ParticipantID = &v
	}
	c.Category = model.Category(catStr)
	return c, nil
}

// CreateTx inserts a claim inside a transaction and returns its id.
func (r *ClaimRepo) CreateTx(ctx context.Context, tx *sql.Tx, c model.Claim) (uint64, error) {
	const q = `INSERT INTO claims
	           (claimed_at, session_id, participant_id, claimant_name, reason, category, item_code, item_number, wm_filename, raw_filename, log_message_id)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	var pid any
	if c.ParticipantID != nil {
		pid = *c.ParticipantID
	}
	res, err := tx.ExecContext(ctx, q,
		c.ClaimedAt.UTC().Format(timeLayout), c.SessionID, pid, c.ClaimantName, c.Reason,
		string(c.Category), c.ItemCode, c.ItemNumber, c.WMFilename, c.RawFilename, c.LogMessageID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetLiveByItemTx fetches the live claim of one item in one session
// inside a transaction. sql.ErrNoRows means the item is unclaimed.
func (r *ClaimRepo) GetLiveByItemTx(ctx context.Context, tx *sql.Tx, sessionID, itemCode string) (model.Claim, error) {
	const q = `SELECT ` + claimColumns + ` FROM claims WHERE session_id = ? AND item_code = ? LIMIT 1`
	return scanClaim(tx.QueryRowContext(ctx, q, sessionID, itemCode))
}

// DeleteTx removes one claim row inside a transaction.
func (r *ClaimRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	return err
}

// ListBySession returns a session's claims in rebuild order:
// case-insensitively by claimant name, then by item number.
func (r *ClaimRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Claim, error) {
	const q = `SELECT ` + claimColumns + ` FROM claims WHERE session_id = ?
	           ORDER BY LOWER(claimant_name), item_number`
	return r.list(ctx, q, sessionID)
}

// ListBySessionChrono returns a session's claims in acceptance order.
// The export uses this so rows come out in claim-id order.
func (r *ClaimRepo) ListBySessionChrono(ctx context.Context, sessionID string) ([]model.Claim, error) {
	const q = `SELECT ` + claimColumns + ` FROM claims WHERE session_id = ? ORDER BY id`
	return r.list(ctx, q, sessionID)
}

// ListAll returns every claim ever recorded, in acceptance order.
func (r *ClaimRepo) ListAll(ctx context.Context) ([]model.Claim, error) {
	const q = `SELECT ` + claimColumns + ` FROM claims ORDER BY id`
	return r.list(ctx, q)
}

func (r *ClaimRepo) list(ctx context.Context, q string, args ...any) ([]model.Claim, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetLogMessage records the rendered announcement handle of a claim;
// "" clears it ahead of a re-render.
func (r *ClaimRepo) SetLogMessage(ctx context.Context, claimID uint64, messageID string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE claims SET log_message_id = ? WHERE id = ?`, messageID, claimID)
	return err
}

// DeleteAllTx wipes the claim ledger inside a transaction.
func (r *ClaimRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM claims`)
	return err
}
