// Package workspace defines workspace module routing and wiring.
package workspace

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/core/workspace/data/repository"
	"github.com/taskhive/taskhive/core/workspace/service"
	"github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
)

type Workspace = structs.Workspace
type Invitation = structs.Invitation

type WorkspaceRepository = repository.WorkspaceRepository

type Module struct {
	service *service.Service
	repo    WorkspaceRepository
	logger  *logger.Logger
}

// New creates the module. The guard and user finder come from the access
// and user modules; collaborators are set on the service afterwards.
func New(d *data.Data, l *logger.Logger, cacheTTL time.Duration) (*Module, error) {
	repo, err := repository.NewWorkspaceRepository(d, l, cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Module{repo: repo, logger: l}, nil
}

// Init builds the service once its dependencies exist.
func (m *Module) Init(guard service.Guard, users service.UserFinder) {
	m.service = service.NewService(m.repo, guard, users, m.logger)
}

func (m *Module) Name() string {
	return "workspace"
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	workspaces := r.Group("/workspaces")
	{
		workspaces.POST("", m.service.HandleCreate)
		workspaces.GET("", m.service.HandleList)
		workspaces.GET("/:id", m.service.HandleGet)
		workspaces.GET("/:id/members", m.service.HandleMembers)
		workspaces.POST("/:id/invite", m.service.HandleInvite)
		workspaces.DELETE("/:id", m.service.HandleDelete)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

// Repository is exposed for the access guard.
func (m *Module) Repository() WorkspaceRepository {
	return m.repo
}
