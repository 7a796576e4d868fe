package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
)

// Setting keys.
const (
	SettingJWTSecret     = "jwt_secret"
	SettingBridgeKeyHash = "bridge_key_hash"
)

// GetJWTSecret retrieves the JWT signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, q DBTX) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", storeErr("generating jwt secret", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		SettingJWTSecret, candidate,
	)
	if err != nil {
		return "", storeErr("storing jwt secret", err)
	}

	// Always read back (either our insert or the existing value).
	secret, _, err := GetSetting(ctx, q, SettingJWTSecret)
	if err != nil {
		return "", err
	}
	return secret, nil
}

// GetSetting returns a setting value and whether it exists.
func GetSetting(ctx context.Context, q DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("querying setting "+key, err)
	}
	return value, true, nil
}

// SetSetting creates or replaces a setting.
func SetSetting(ctx context.Context, q DBTX, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return storeErr("storing setting "+key, err)
	}
	return nil
}
