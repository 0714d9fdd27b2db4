package suggestions

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/types"
)

// MinTitleLength is the shortest job title accepted, in characters.
const MinTitleLength = 3

// DefaultTimeout bounds a remote suggestion call before falling back.
const DefaultTimeout = 8 * time.Second

// ErrTitleTooShort is returned for titles under MinTitleLength characters. Its text is user-facing.
var ErrTitleTooShort = errors.New("El título del trabajo debe tener al menos 3 caracteres")

// Provider drafts suggestions for a job title.
type Provider interface {
	Suggest(ctx context.Context, title string) (*types.Suggestion, error)
}

// Service resolves suggestions through the fallback ladder: remote provider, local table, generic set.
type Service struct {
	Remote  Provider // nil skips straight to the local table
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewService creates a Service backed by remote.
func NewService(remote Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Remote: remote, Timeout: DefaultTimeout, Logger: logger}
}

// Suggest returns suggestions for title. Remote failures are logged and never returned;
// the only error is ErrTitleTooShort.
func (s *Service) Suggest(ctx context.Context, title string) (types.Suggestion, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return types.Suggestion{}, ErrTitleTooShort
	}

	log := s.logger().With(zap.String("title", title))

	if s.Remote != nil {
		got, err := s.remote(ctx, title)
		switch {
		case err != nil:
			log.Warn("remote suggestions failed, using local fallback", zap.Error(err))
		case got == nil || (len(got.Habilidades) == 0 && strings.TrimSpace(got.Experiencia) == ""):
			log.Warn("remote suggestions empty, using local fallback")
		default:
			out := *got
			out.Fuente = types.SourceAI
			if out.Habilidades == nil {
				out.Habilidades = []string{}
			}
			return out, nil
		}
	}

	if local, ok := LookupLocal(title); ok {
		log.Debug("local suggestion matched")
		return local, nil
	}
	log.Debug("no local suggestion, using generic set")
	return Generic(title), nil
}

func (s *Service) remote(ctx context.Context, title string) (*types.Suggestion, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Remote.Suggest(ctx, title)
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
