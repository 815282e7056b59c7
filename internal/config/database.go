// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

// DSN builds the postgres connection string. connect_timeout bounds the
// initial connection attempt so a dead store fails startup quickly instead of
// hanging.
func (d *DatabaseConfig) DSN() string {
	params := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"password=" + d.Password,
		"dbname=" + d.Database,
		"sslmode=" + d.SSLMode,
	}
	if d.ConnectTimeout > 0 {
		params = append(params, fmt.Sprintf("connect_timeout=%d", d.ConnectTimeout))
	}
	return strings.Join(params, " ")
}
