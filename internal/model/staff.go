package model

import "time"

// StaffAccount represents an operator account as stored in the
// `staff_accounts` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs are
// used internally by the repository layer; handlers define separate
// response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – name of the role (STAFF or VIEWER).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
type StaffAccount struct {
    ID           uint64    // staff_accounts.id
    Email        string    // staff_accounts.email
    PasswordHash string    // staff_accounts.password_hash
    Role         string    // staff_accounts.role
    IsActive     bool      // staff_accounts.is_active
    CreatedAt    time.Time // staff_accounts.created_at (RFC 3339 text)
}

// Role names accepted for staff accounts.  STAFF unlocks the
// administrative command surface; VIEWER only the public reads.
const (
    RoleStaff  = "STAFF"
    RoleViewer = "VIEWER"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a staff account and carries metadata for
// expiry and revocation.  The plain token is never stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  AccountID – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    AccountID uint64     // refresh_tokens.account_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at (RFC 3339 text)
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at (RFC 3339 text)
}
