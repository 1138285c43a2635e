package server

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openmined/dirbox/internal/server/session"
	"github.com/openmined/dirbox/internal/utils"
)

const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultLoginRateLimit = "10-M"
)

type Config struct {
	HTTP HTTPConfig
	Root string
	Auth AuthConfig
}

type HTTPConfig struct {
	Addr     string
	CertFile string
	KeyFile  string
}

type AuthConfig struct {
	Username string
	// Password is hashed into PasswordHash at validation time when no
	// hash is configured. Prefer PasswordHash in config files.
	Password       string
	PasswordHash   string
	SessionTTL     time.Duration
	LoginRateLimit string
}

// Validate normalizes the config in place: resolves the root directory,
// fills defaults and derives the password hash.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultAddr
	}

	root, err := utils.ResolvePath(c.Root)
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	if !utils.DirExists(root) {
		return fmt.Errorf("root %q is not a directory", root)
	}
	c.Root = root

	if c.Auth.Username == "" {
		return fmt.Errorf("auth username is required")
	}
	if c.Auth.PasswordHash == "" {
		if c.Auth.Password == "" {
			return fmt.Errorf("auth password or password hash is required")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Auth.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		c.Auth.PasswordHash = string(hash)
		c.Auth.Password = ""
	}

	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = session.DefaultTTL
	}
	if c.Auth.LoginRateLimit == "" {
		c.Auth.LoginRateLimit = DefaultLoginRateLimit
	}
	return nil
}
