package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Conn returns a session bound to ctx that runs on tx when one is given.
// Repositories built with WithTx(tx) use it so their queries join the
// caller's transaction instead of taking a fresh pooled connection.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	sess := db.WithContext(ctx)
	if tx != nil {
		sess.Statement.ConnPool = tx
	}
	return sess
}
