package inmemory

import (
	"log/slog"
	"strconv"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/repository/connection"
	omitnilpointers "github.com/sharetube/syncroom/pkg/omit-nil-pointers"
)

// Attempts at drawing an unused name before a numeric suffix is appended.
const maxNameAttempts = 32

type iNameGenerator interface {
	Generate() string
}

// repo keeps one presence record per live connection.
// It is not safe for concurrent use: the room service session loop is its only caller.
type repo struct {
	presences map[string]*domain.Presence
	names     map[string]int
	generator iNameGenerator
	logger    *slog.Logger
}

func NewRepo(generator iNameGenerator, logger *slog.Logger) *repo {
	return &repo{
		presences: make(map[string]*domain.Presence),
		names:     make(map[string]int),
		generator: generator,
		logger:    logger,
	}
}

func (r *repo) Register(id string) (domain.Presence, error) {
	funcName := "connection.inmemory.Register"
	r.logger.Debug(funcName, "id", id)

	if _, ok := r.presences[id]; ok {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return domain.Presence{}, connection.ErrAlreadyExists
	}

	p := &domain.Presence{
		Id:   id,
		Name: r.uniqueName(),
	}
	r.presences[id] = p
	r.names[p.Name]++

	r.logger.Debug(funcName, "result", p.Name)
	return *p, nil
}

func (r *repo) uniqueName() string {
	name := r.generator.Generate()
	for i := 1; i < maxNameAttempts && r.names[name] > 0; i++ {
		name = r.generator.Generate()
	}

	base := name
	for i := maxNameAttempts; r.names[name] > 0; i++ {
		name = base + " " + strconv.Itoa(i)
	}

	return name
}

func (r *repo) Get(id string) (domain.Presence, error) {
	p, ok := r.presences[id]
	if !ok {
		return domain.Presence{}, connection.ErrNotFound
	}

	return *p, nil
}

// Update applies patch to the record of id. Renames are not checked for uniqueness.
func (r *repo) Update(id string, patch *domain.PresencePatch) error {
	funcName := "connection.inmemory.Update"
	p, ok := r.presences[id]
	if !ok {
		r.logger.Debug(funcName, "id", id, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	r.logger.Debug(funcName, "id", id, "fields", omitnilpointers.OmitNilPointers(map[string]any{
		"name":               patch.Name,
		"ping":               patch.Ping,
		"currently_watching": patch.CurrentlyWatching,
		"current_time":       patch.CurrentTime,
	}))

	if patch.Name != nil {
		r.releaseName(p.Name)
		r.names[*patch.Name]++
	}
	p.Apply(patch)

	return nil
}

func (r *repo) Remove(id string) error {
	funcName := "connection.inmemory.Remove"
	p, ok := r.presences[id]
	if !ok {
		r.logger.Info(funcName, "id", id, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	r.releaseName(p.Name)
	delete(r.presences, id)

	r.logger.Debug(funcName, "id", id, "result", "OK")
	return nil
}

func (r *repo) Length() int {
	return len(r.presences)
}

func (r *repo) releaseName(name string) {
	if r.names[name] <= 1 {
		delete(r.names, name)
		return
	}

	r.names[name]--
}
