package services

import (
	"context"

	"github.com/chartapp/chartapp-services/internal/appconfig"
	"github.com/chartapp/chartapp-services/internal/authn"
	"github.com/chartapp/chartapp-services/internal/authz"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
)

// ChatStore is the persistence the resource services depend on.
type ChatStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	AddParticipants(ctx context.Context, groupID int64, userIDs []int64) (*models.Group, error)
	DeleteGroup(ctx context.Context, id int64) error

	CreateMessage(ctx context.Context, groupID, senderID int64, content string) (*models.Message, error)
	ListMessages(ctx context.Context, groupID *int64) ([]models.Message, error)
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config *appconfig.Config
	DB     ChatStore
	Tokens *authn.TokenService
	Events events.Notifier

	// UserMutation decides who may patch or delete a user. Nil allows any
	// authenticated actor.
	UserMutation authz.UserMutationPolicy
}

func (svc *Service) redactErrors() bool {
	return svc.Config != nil && svc.Config.Server.RedactInternalErrors
}

func (svc *Service) basePath() string {
	if svc.Config == nil {
		return ""
	}
	return svc.Config.BasePath
}
