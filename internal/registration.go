package internal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// errDuplicateRef means an active master-register entry already claims the
// (item type, ref id) pair. Handlers translate it to 409.
var errDuplicateRef = errors.New("reference id already registered")

// registerItem adds an item to the master register inside the caller's
// transaction. Creation of the type record and its register entry must
// commit or roll back together.
func registerItem(ctx context.Context, tx *sql.Tx, itemType, refID string) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM master_register
			WHERE item_type = $1 AND ref_id = $2 AND is_active
		)`, itemType, refID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return errDuplicateRef
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO master_register (item_type, ref_id, is_active)
		VALUES ($1, $2, TRUE)`, itemType, refID)
	return err
}

// deregisterItem flips the register entry inactive. The row itself stays;
// history referencing the ref id must survive deactivation.
func deregisterItem(ctx context.Context, tx *sql.Tx, itemType, refID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE master_register SET is_active = FALSE
		WHERE item_type = $1 AND ref_id = $2 AND is_active`, itemType, refID)
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
