package db

import (
	"database/sql"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
)

// SQLiteDriverName is the project-specific SQLCipher driver name.
const SQLiteDriverName = "sqlite3_notemate"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{})
}
