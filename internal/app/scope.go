package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/corvid-labs/taskline-backend/internal/handlers"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/repos"
	"github.com/corvid-labs/taskline-backend/internal/services"
)

// RequestScope is the bundle of collaborators wired for exactly one
// inbound request: one repository binding, one service, one handler.
// It is built before any request logic runs, handed to that request's
// handler, and dropped when the response is written. Nothing in it is
// stored or reused across requests.
type RequestScope struct {
	Tasks       repos.TaskRepo
	TaskService services.TaskService
	TaskHandler *handlers.TaskHandler
}

// RepoFactory binds a repository implementation for one request. The
// postgres factory binds a session borrowing from the shared pool; the
// memory factory binds the in-process store. A factory error means the
// request cannot be serviced and aborts before orchestration starts.
type RepoFactory func(ctx context.Context) (repos.TaskRepo, error)

// ScopeResolver builds one RequestScope per inbound request. The
// resolver itself is immutable after construction, so concurrent
// resolutions share nothing but the factory and the logger.
type ScopeResolver struct {
	newRepo RepoFactory
	log     *logger.Logger
}

func NewScopeResolver(newRepo RepoFactory, log *logger.Logger) *ScopeResolver {
	return &ScopeResolver{newRepo: newRepo, log: log}
}

// Resolve wires repository → service → handler for one request. It
// either returns a fully wired scope or an infrastructure error; a
// partially wired scope is not constructible.
func (sr *ScopeResolver) Resolve(ctx context.Context) (*RequestScope, error) {
	repo, err := sr.newRepo(ctx)
	if err != nil {
		if _, ok := apperrors.AsError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewPersistence("scopeResolver.Resolve", "bind repository", err)
	}

	svc := services.NewTaskService(repo, sr.log)
	return &RequestScope{
		Tasks:       repo,
		TaskService: svc,
		TaskHandler: handlers.NewTaskHandler(svc, sr.log),
	}, nil
}

// Handle adapts a scoped handler function into a gin handler.
// Resolution happens first; on failure the request is aborted through
// the boundary translator and the handler never runs.
func (sr *ScopeResolver) Handle(fn func(*RequestScope, *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := sr.Resolve(c.Request.Context())
		if err != nil {
			handlers.RespondError(c, sr.log, err)
			c.Abort()
			return
		}
		fn(scope, c)
	}
}
