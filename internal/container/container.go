package container

import (
	"fmt"
	"strings"
)

// Options holds the server configuration, populated by humacli from flags
// and SERVICE_* environment variables.
type Options struct {
	Port           int    `default:"8888"           help:"Port to listen on"                                short:"p"`
	Store          string `default:"sqlite"         help:"Mapping store: sqlite, postgres, redis or memory" short:"s"`
	DBPath         string `default:"urls.db"        help:"SQLite database file"                             name:"db-path"`
	DatabaseURL    string `default:""               help:"Postgres connection string"                       name:"database-url"`
	RedisAddr      string `default:"localhost:6379" help:"Redis server address"                             short:"r"`
	CodeLength     int    `default:"8"              help:"Length of generated short codes"                  short:"c"`
	MaxAttempts    int    `default:"10"             help:"Candidate codes tried before giving up"           name:"max-attempts"`
	RequestTimeout int    `default:"10"             help:"Per-request timeout in seconds"                   name:"request-timeout"`
	BaseURL        string `default:""               help:"Public base URL for short links"                  name:"base-url"`
	Events         string `default:"none"           help:"Mapping events: none, memory or redis"            short:"e"`
	LogFormat      string `default:"console"        help:"Log format: json or console"                      name:"log-format"`
}

// PublicBaseURL returns BaseURL without a trailing slash, or a localhost URL
// derived from Port when unset.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}
