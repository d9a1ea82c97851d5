package prompts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domain "github.com/bryanwahyu/auspex/internal/domain/prompts"
)

// Service manages editable prompts. Repo is nil when no database is
// configured; reads then come from the template files and writes fail with
// domain.ErrReadOnly.
type Service struct {
	Repo     domain.Repository
	Defaults domain.Source
	Log      *zap.Logger
}

func NewService(repo domain.Repository, defaults domain.Source, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, Defaults: defaults, Log: log.Named("prompts")}
}

// Persistent reports whether prompt edits are stored.
func (s *Service) Persistent() bool { return s.Repo != nil }

// Init creates the prompts table and seeds it from the template files when empty.
func (s *Service) Init(ctx context.Context) error {
	if s.Repo == nil {
		s.Log.Info("no database configured, using file-based prompts")
		return nil
	}
	if err := s.Repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure prompts schema: %w", err)
	}
	n, err := s.Repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count prompts: %w", err)
	}
	if n > 0 {
		s.Log.Info("prompts table ready", zap.Int("prompts", n))
		return nil
	}

	s.Log.Info("seeding default prompts")
	seeded := 0
	for _, d := range domain.Definitions {
		text, err := s.Defaults.Default(d.File)
		if err != nil {
			s.Log.Warn("default prompt missing, not seeded", zap.String("key", string(d.Key)), zap.Error(err))
			continue
		}
		rec := &domain.Record{Key: d.Key, Name: d.Name, Content: text, IsDefault: true}
		if err := s.Repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("seed prompt %s: %w", d.Key, err)
		}
		seeded++
	}
	s.Log.Info("seeded prompts", zap.Int("prompts", seeded))
	return nil
}

// List returns every prompt. Database failures degrade to the file defaults.
func (s *Service) List(ctx context.Context) ([]*domain.Record, error) {
	if s.Repo != nil {
		recs, err := s.Repo.List(ctx)
		if err == nil {
			return recs, nil
		}
		s.Log.Error("list prompts from database failed, using files", zap.Error(err))
	}

	out := make([]*domain.Record, 0, len(domain.Definitions))
	for _, d := range domain.Definitions {
		text, err := s.Defaults.Default(d.File)
		if err != nil {
			s.Log.Warn("default prompt missing", zap.String("key", string(d.Key)), zap.Error(err))
		}
		out = append(out, &domain.Record{Key: d.Key, Name: d.Name, Content: text, IsDefault: true})
	}
	return out, nil
}

// Get returns the current text for key: the stored row when there is one,
// otherwise the template file.
func (s *Service) Get(ctx context.Context, key domain.Key) (string, error) {
	def, ok := domain.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidKey, key)
	}
	if s.Repo != nil {
		rec, err := s.Repo.Get(ctx, key)
		switch {
		case err != nil:
			s.Log.Error("get prompt from database failed, using file", zap.String("key", string(key)), zap.Error(err))
		case rec != nil && rec.Content == "":
			return "", fmt.Errorf("%w: %s is empty", domain.ErrNotFound, key)
		case rec != nil:
			return rec.Content, nil
		}
	}

	text, err := s.Defaults.Default(def.File)
	if err != nil || text == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return text, nil
}

// Text is Get for callers that fall back to the bundled prompt on their own:
// a missing prompt yields "" and no error.
func (s *Service) Text(ctx context.Context, key domain.Key) (string, error) {
	text, err := s.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return text, err
}

// Update stores edited text for key and clears its default flag.
func (s *Service) Update(ctx context.Context, key domain.Key, content string) error {
	if !domain.Valid(key) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidKey, key)
	}
	if s.Repo == nil {
		return domain.ErrReadOnly
	}
	ok, err := s.Repo.SetContent(ctx, key, content, false)
	if err != nil {
		s.Log.Error("update prompt failed", zap.String("key", string(key)), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: no row for %s", domain.ErrUpdateFailed, key)
	}
	s.Log.Info("prompt updated", zap.String("key", string(key)), zap.Int("length", len(content)))
	return nil
}

// Reset restores the template file text for key.
func (s *Service) Reset(ctx context.Context, key domain.Key) error {
	def, ok := domain.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvalidKey, key)
	}
	if s.Repo == nil {
		return domain.ErrReadOnly
	}
	text, err := s.Defaults.Default(def.File)
	if err != nil || text == "" {
		return fmt.Errorf("%w: no default text for %s", domain.ErrUpdateFailed, key)
	}
	ok, err = s.Repo.SetContent(ctx, key, text, true)
	if err != nil {
		s.Log.Error("reset prompt failed", zap.String("key", string(key)), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrUpdateFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: no row for %s", domain.ErrUpdateFailed, key)
	}
	s.Log.Info("prompt reset to default", zap.String("key", string(key)))
	return nil
}

// Check pings the database. It implements middleware.HealthChecker.
func (s *Service) Check(ctx context.Context) error {
	if s.Repo == nil {
		return domain.ErrReadOnly
	}
	return s.Repo.Ping(ctx)
}
