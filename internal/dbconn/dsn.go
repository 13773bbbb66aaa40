package dbconn

import (
	"fmt"
	"net/url"
	"strings"
)

// ConnectionDescriptor is the user-supplied endpoint of a database to
// import. Port defaults to 5432; Password may be empty.
type ConnectionDescriptor struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Validate checks the required fields are present.
func (d ConnectionDescriptor) Validate() error {
	if strings.TrimSpace(d.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if strings.TrimSpace(d.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if strings.TrimSpace(d.Database) == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

// DSN builds a postgres:// connection string from the descriptor.
// Username and password are percent-encoded; an empty password produces
// "user@host" with no dangling separator.
func (d ConnectionDescriptor) DSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, port),
		Path:   "/" + d.Database,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	} else {
		u.User = url.User(d.Username)
	}
	return u.String()
}

// WithSSLMode returns dsn with its sslmode parameter forced to mode.
// A dsn that cannot be parsed as a URL is returned unchanged — the dial
// will surface the real parse error with more context.
func WithSSLMode(dsn, mode string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	q.Set("sslmode", mode)
	u.RawQuery = q.Encode()
	return u.String()
}
