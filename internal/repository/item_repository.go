package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-claims/internal/model"
)

// ItemRepo provides data access to the items table. Item identity is the
// canonical code; REPLACE INTO keeps asset re-ingestion idempotent in
// both SQL dialects.
type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

const itemColumns = `item_code, category, number, wm_filename, wm_url, raw_filename, raw_url, listing_id`

func scanItem(row interface{ Scan(...any) error }) (model.Item, error) {
	var (
		it    model.Item
		wmURL sql.NullString
		rwURL sql.NullString
	)
	err := row.Scan(&it.Code, &it.Category, &it.Number, &it.WMFilename, &wmURL, &it.RawFilename, &rwURL, &it.ListingID)
	if err != nil {
		return model.Item{}, err
	}
	it.WMURL = wmURL.String
	it.RawURL = rwURL.String
	return it, nil
}

// Upsert inserts or replaces an item row keyed by its code.
func (r *ItemRepo) Upsert(ctx context.Context, it model.Item) error {
	const q = `REPLACE INTO items (` + itemColumns + `) VALUES (?,?,?,?,?,?,?,?)`
	_, err := r.DB.ExecContext(ctx, q,
		it.Code, string(it.Category), it.Number, it.WMFilename, it.WMURL, it.RawFilename, it.RawURL, it.ListingID)
	return err
}

// GetByCode fetches one item; sql.ErrNoRows when the code is unknown.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE item_code = ? LIMIT 1`
	return scanItem(r.DB.QueryRowContext(ctx, q, code))
}

// GetByListingTx resolves an item from its current public listing
// reference inside a transaction. sql.ErrNoRows means the listing is
// not tracked.
func (r *ItemRepo) GetByListingTx(ctx context.Context, tx *sql.Tx, listingID string) (model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE listing_id = ? AND listing_id <> '' LIMIT 1`
	return scanItem(tx.QueryRowContext(ctx, q, listingID))
}

// SetListing updates the listing reference of an item; "" marks it
// unlisted.
func (r *ItemRepo) SetListing(ctx context.Context, code, listingID string) error {
	const q = `UPDATE items SET listing_id = ? WHERE item_code = ?`
	_, err := r.DB.ExecContext(ctx, q, listingID, code)
	return err
}

// ClearListingTx clears the listing reference inside a transaction,
// used when a claim commit consumes the listing.
func (r *ItemRepo) ClearListingTx(ctx context.Context, tx *sql.Tx, code string) error {
	const q = `UPDATE items SET listing_id = '' WHERE item_code = ?`
	_, err := tx.ExecContext(ctx, q, code)
	return err
}

// ListAll returns the whole catalog ordered by category then number.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items ORDER BY category, number`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UnclaimedByCategoryTx lists items of one category that carry no live
// claim in the given session, ordered by number. Used by random
// assignment and by listing reposts.
func (r *ItemRepo) UnclaimedByCategoryTx(ctx context.Context, tx *sql.Tx, cat model.Category, sessionID string) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items
	           WHERE category = ?
	             AND item_code NOT IN (SELECT item_code FROM claims WHERE session_id = ?)
	           ORDER BY number`
	rows, err := tx.QueryContext(ctx, q, string(cat), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteAllTx wipes the catalog inside a transaction.
func (r *ItemRepo) DeleteAllTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM items`)
	return err
}
