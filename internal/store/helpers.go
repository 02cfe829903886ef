package store

import (
	"database/sql"
	"fmt"
)

func expectOneRow(res sql.Result, conflict error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return conflict
	}
	return nil
}
