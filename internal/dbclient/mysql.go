package dbclient

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDSN builds a MySQL DSN in the driver's
// user:password@tcp(host:port)/dbname form.
func MySQLDSN(host string, port int, user, password, database string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		user, password, host, port, database)
}
