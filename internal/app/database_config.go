package app

import (
	"strings"

	"github.com/kodisha/kodisha/internal/database"
)

// ConnectionConfig converts the application database configuration into the
// database package representation. A host-based section takes effect only when
// it is enabled and matches the selected driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	var auth DBAuthConfig
	switch cfg.Driver {
	case "postgres":
		auth = c.Postgres
	case "mysql":
		auth = c.MySQL
	}

	if auth.Enabled {
		cfg.Host = strings.TrimSpace(auth.Host)
		cfg.Port = auth.Port
		cfg.User = strings.TrimSpace(auth.Username)
		cfg.Password = auth.Password
		cfg.Name = strings.TrimSpace(auth.Database)
	}

	return cfg
}
