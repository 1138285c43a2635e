package access

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openmined/dirbox/internal/server/fsroot"
	"github.com/openmined/dirbox/internal/server/lister"
	"github.com/openmined/dirbox/internal/server/perms"
	"github.com/openmined/dirbox/internal/server/session"
)

// Kind is the outcome of an access decision.
type Kind int

const (
	// KindServe means the target is a readable file; serve its bytes.
	KindServe Kind = iota
	// KindList means the target is a readable directory; render a listing.
	KindList
	// KindDeny means the request is rejected outright.
	KindDeny
	// KindRedirectToLogin means the target is private and the caller is
	// anonymous; send them to the login page and back.
	KindRedirectToLogin
)

// Decision is the result of evaluating one request path against the root,
// the entry's public bits and the caller's session.
type Decision struct {
	Kind        Kind
	RequestPath string // original request path
	Path        string // resolved absolute path
	IsDir       bool
	Entries     []*lister.Entry // populated for KindList
	Identity    string          // "" when anonymous
	Reason      error           // populated for KindDeny
}

// Service decides, for every incoming path, whether to serve, list, deny
// or redirect. It owns no state of its own beyond its collaborators.
type Service struct {
	root     fsroot.Root
	perms    *perms.Store
	sessions *session.Registry
	lister   *lister.Lister
}

func NewService(root fsroot.Root, store *perms.Store, sessions *session.Registry) *Service {
	return &Service{
		root:     root,
		perms:    store,
		sessions: sessions,
		lister:   lister.New(store),
	}
}

func (s *Service) Root() fsroot.Root {
	return s.root
}

func (s *Service) Sessions() *session.Registry {
	return s.sessions
}

// Decide runs the read-path state machine. A directory and a file follow
// the same rule, public-read OR authenticated; only the rendering shape
// differs. The identity is carried on allowed decisions so downstream
// rendering can show management controls to authenticated callers only.
func (s *Service) Decide(ctx context.Context, requestPath string, token string) *Decision {
	identity, _ := s.sessions.Validate(token)

	abs, err := s.root.Resolve(requestPath)
	if err != nil {
		return &Decision{
			Kind:        KindDeny,
			RequestPath: requestPath,
			Identity:    identity,
			Reason:      ErrOutsideRoot,
		}
	}

	info, err := os.Stat(abs)
	if err != nil {
		// any stat failure reads as absent, never as "exists"
		if !os.IsNotExist(err) {
			slog.Warn("stat failed", "path", abs, "error", err)
		}
		return &Decision{
			Kind:        KindDeny,
			RequestPath: requestPath,
			Path:        abs,
			Identity:    identity,
			Reason:      ErrNotFound,
		}
	}

	isPublic := s.perms.IsPubliclyReadable(abs)
	if !isPublic && identity == "" {
		return &Decision{
			Kind:        KindRedirectToLogin,
			RequestPath: requestPath,
			Path:        abs,
			IsDir:       info.IsDir(),
		}
	}

	if info.IsDir() {
		entries, err := s.lister.List(abs, s.root.Rel(abs))
		if err != nil {
			return &Decision{
				Kind:        KindDeny,
				RequestPath: requestPath,
				Path:        abs,
				Identity:    identity,
				Reason:      fmt.Errorf("%w: %w", ErrStorage, err),
			}
		}
		return &Decision{
			Kind:        KindList,
			RequestPath: requestPath,
			Path:        abs,
			IsDir:       true,
			Entries:     entries,
			Identity:    identity,
		}
	}

	return &Decision{
		Kind:        KindServe,
		RequestPath: requestPath,
		Path:        abs,
		Identity:    identity,
	}
}

// SetReadable toggles the public-read flag of a path. Mutations always
// require a valid session, regardless of the target's own public bits.
func (s *Service) SetReadable(ctx context.Context, requestPath string, token string, public bool) error {
	abs, err := s.authorizeMutation(requestPath, token)
	if err != nil {
		return err
	}
	if err := s.perms.SetPubliclyReadable(abs, public); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// SetWritable toggles the public-write flag of a path.
func (s *Service) SetWritable(ctx context.Context, requestPath string, token string, writable bool) error {
	abs, err := s.authorizeMutation(requestPath, token)
	if err != nil {
		return err
	}
	if err := s.perms.SetPubliclyWritable(abs, writable); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *Service) authorizeMutation(requestPath string, token string) (string, error) {
	if _, ok := s.sessions.Validate(token); !ok {
		return "", ErrUnauthorized
	}
	abs, err := s.root.Resolve(requestPath)
	if err != nil {
		return "", ErrOutsideRoot
	}
	if _, err := os.Stat(abs); err != nil {
		return "", ErrNotFound
	}
	return abs, nil
}
