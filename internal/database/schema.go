package database

import "database/sql"

// The ledger schema is applied statement by statement on every open, so
// a fresh database bootstraps itself and an existing one is untouched.
// Timestamps are stored as RFC 3339 text in both dialects; comparisons
// happen in Go, never in SQL.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_code   VARCHAR(4)   NOT NULL PRIMARY KEY,
		category    CHAR(1)      NOT NULL,
		number      INT          NOT NULL,
		wm_filename VARCHAR(255) NOT NULL DEFAULT '',
		wm_url      TEXT,
		raw_filename VARCHAR(255) NOT NULL DEFAULT '',
		raw_url     TEXT,
		listing_id  VARCHAR(64)  NOT NULL DEFAULT ''
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS picks (
		participant_id BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		display_name   VARCHAR(255)    NOT NULL DEFAULT '',
		reason         VARCHAR(255)    NOT NULL DEFAULT '',
		remaining      INT             NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS guest_picks (
		guest_name VARCHAR(255) NOT NULL PRIMARY KEY,
		reason     VARCHAR(255) NOT NULL DEFAULT '',
		remaining  INT          NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS claims (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		claimed_at     VARCHAR(40)     NOT NULL,
		session_id     VARCHAR(64)     NOT NULL,
		participant_id BIGINT UNSIGNED NULL,
		claimant_name  VARCHAR(255)    NOT NULL,
		reason         VARCHAR(255)    NOT NULL DEFAULT '',
		category       CHAR(1)         NOT NULL,
		item_code      VARCHAR(4)      NOT NULL,
		item_number    INT             NOT NULL,
		wm_filename    VARCHAR(255)    NOT NULL DEFAULT '',
		raw_filename   VARCHAR(255)    NOT NULL DEFAULT '',
		log_message_id VARCHAR(64)     NOT NULL DEFAULT '',
		KEY idx_claims_session_item (session_id, item_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS render_log (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(64)     NOT NULL,
		message_id VARCHAR(64)     NOT NULL,
		KEY idx_render_log_session (session_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS settings (
		name  VARCHAR(64) NOT NULL PRIMARY KEY,
		value TEXT        NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS staff_accounts (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		role          VARCHAR(16)     NOT NULL DEFAULT 'VIEWER',
		is_active     TINYINT(1)      NOT NULL DEFAULT 1,
		created_at    VARCHAR(40)     NOT NULL,
		UNIQUE KEY uq_staff_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		account_id BIGINT UNSIGNED NOT NULL,
		token_hash VARCHAR(64)     NOT NULL,
		expires_at VARCHAR(40)     NOT NULL,
		revoked_at VARCHAR(40)     NULL,
		created_at VARCHAR(40)     NOT NULL,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_account (account_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_code    TEXT    NOT NULL PRIMARY KEY,
		category     TEXT    NOT NULL,
		number       INTEGER NOT NULL,
		wm_filename  TEXT    NOT NULL DEFAULT '',
		wm_url       TEXT,
		raw_filename TEXT    NOT NULL DEFAULT '',
		raw_url      TEXT,
		listing_id   TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS picks (
		participant_id INTEGER NOT NULL PRIMARY KEY,
		display_name   TEXT    NOT NULL DEFAULT '',
		reason         TEXT    NOT NULL DEFAULT '',
		remaining      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS guest_picks (
		guest_name TEXT    NOT NULL PRIMARY KEY,
		reason     TEXT    NOT NULL DEFAULT '',
		remaining  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS claims (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		claimed_at     TEXT    NOT NULL,
		session_id     TEXT    NOT NULL,
		participant_id INTEGER NULL,
		claimant_name  TEXT    NOT NULL,
		reason         TEXT    NOT NULL DEFAULT '',
		category       TEXT    NOT NULL,
		item_code      TEXT    NOT NULL,
		item_number    INTEGER NOT NULL,
		wm_filename    TEXT    NOT NULL DEFAULT '',
		raw_filename   TEXT    NOT NULL DEFAULT '',
		log_message_id TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_session_item ON claims (session_id, item_code)`,
	`CREATE TABLE IF NOT EXISTS render_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		message_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_render_log_session ON render_log (session_id)`,
	`CREATE TABLE IF NOT EXISTS settings (
		name  TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS staff_accounts (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		role          TEXT    NOT NULL DEFAULT 'VIEWER',
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id INTEGER NOT NULL,
		token_hash TEXT    NOT NULL UNIQUE,
		expires_at TEXT    NOT NULL,
		revoked_at TEXT    NULL,
		created_at TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_account ON refresh_tokens (account_id)`,
}

func applySchema(db *sql.DB, driver string) error {
	stmts := mysqlSchema
	if driver == DriverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
