package repository

import (
	"context"
	"database/sql"
)

// RenderLogRepo tracks the handles of projection messages that do not
// belong to a single claim (banner, per-claimant headers, trailers).
// Together with claims.log_message_id it lets the rebuild delete its
// previous output exactly, by identifier, instead of scanning rendered
// text for markers.
type RenderLogRepo struct{ DB *sql.DB }

func NewRenderLogRepo(db *sql.DB) *RenderLogRepo { return &RenderLogRepo{DB: db} }

// Add records one rendered message handle for a session.
func (r *RenderLogRepo) Add(ctx context.Context, sessionID, messageID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO render_log (session_id, message_id) VALUES (?,?)`, sessionID, messageID)
	return err
}

// List returns the recorded handles for a session in insertion order.
func (r *RenderLogRepo) List(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT message_id FROM render_log WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// DeleteBySession forgets every recorded handle for a session.
func (r *RenderLogRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM render_log WHERE session_id = ?`, sessionID)
	return err
}

// DeleteAllTx wipes the render log inside a transaction.
func (r *RenderLogRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM render_log`)
	return err
}
