package server

import (
	"fmt"

	"github.com/openmined/dirbox/internal/server/access"
	"github.com/openmined/dirbox/internal/server/fsroot"
	"github.com/openmined/dirbox/internal/server/perms"
	"github.com/openmined/dirbox/internal/server/session"
)

type Services struct {
	Access   *access.Service
	Perms    *perms.Store
	Sessions *session.Registry
}

func NewServices(config *Config) (*Services, error) {
	root, err := fsroot.New(config.Root)
	if err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}

	permsStore := perms.NewStore()
	sessions := session.NewRegistry(config.Auth.SessionTTL)
	accessSvc := access.NewService(root, permsStore, sessions)

	return &Services{
		Access:   accessSvc,
		Perms:    permsStore,
		Sessions: sessions,
	}, nil
}
