package dbclient

import (
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresDSN builds a keyword/value Postgres connection string.
// sslMode defaults to disable.
func PostgresDSN(host string, port int, user, password, database, sslMode string) string {
	if port == 0 {
		port = 5432
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslMode)
}
