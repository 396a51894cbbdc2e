// Package service contains workspace business logic: creation, membership,
// invitations and owner-only deletion.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/core/workspace/data/repository"
	"github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/utils"
)

// Guard checks workspace membership and ownership.
type Guard interface {
	Workspace(ctx context.Context, userID, id string) (*structs.Workspace, error)
	Owner(ctx context.Context, userID, id string) (*structs.Workspace, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*userstructs.User, error)
	FindByEmail(ctx context.Context, email string) (*userstructs.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*userstructs.User, error)
}

type InviteMailer interface {
	SendInvite(ctx context.Context, to, workspaceName, inviterName string) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, workspaceID, action, location string)
}

type Service struct {
	repo     repository.WorkspaceRepository
	guard    Guard
	users    UserFinder
	mailer   InviteMailer
	activity ActivityRecorder
	blobs    oss.Deleter
	logger   *logger.Logger
}

func NewService(repo repository.WorkspaceRepository, guard Guard, users UserFinder, l *logger.Logger) *Service {
	return &Service{repo: repo, guard: guard, users: users, logger: l}
}

// SetCollaborators sets the optional mailer, activity recorder and blob
// store. Any of them may be nil.
func (s *Service) SetCollaborators(mailer InviteMailer, activity ActivityRecorder, blobs oss.Deleter) {
	s.mailer = mailer
	s.activity = activity
	s.blobs = blobs
}

func (s *Service) record(ctx context.Context, userID, workspaceID, action, location string) {
	if s.activity != nil {
		s.activity.Record(ctx, userID, workspaceID, action, location)
	}
}

// Create creates a workspace owned by ownerID with ownerID as its only member.
func (s *Service) Create(ctx context.Context, ownerID, name string) (*structs.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("name"))
	}
	now := data.Now()
	ws := &structs.Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		MemberIDs: []string{ownerID},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, ws); err != nil {
		s.logger.Error(ctx, "Failed to create workspace", "error", err)
		return nil, err
	}
	s.record(ctx, ownerID, ws.ID, "Created workspace", "Workspace: "+ws.Name)
	s.logger.Info(ctx, "Workspace created", "workspace_id", ws.ID, "owner_id", ownerID)
	return ws, nil
}

// CreateDefault creates the workspace every new account starts with.
func (s *Service) CreateDefault(ctx context.Context, ownerID string) (*structs.Workspace, error) {
	return s.Create(ctx, ownerID, structs.DefaultName)
}

func (s *Service) List(ctx context.Context, userID string) ([]*structs.Workspace, error) {
	return s.repo.ListByMember(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*structs.Workspace, error) {
	return s.guard.Workspace(ctx, userID, id)
}

// IDsForUser returns the ids of the workspaces userID belongs to.
func (s *Service) IDsForUser(ctx context.Context, userID string) ([]string, error) {
	return s.repo.IDsByMember(ctx, userID)
}

// Members returns the public views of the members of a workspace.
func (s *Service) Members(ctx context.Context, userID, id string) ([]*userstructs.Summary, error) {
	ws, err := s.guard.Workspace(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByIDs(ctx, ws.MemberIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*userstructs.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// Invite makes the owner of email a member of the workspace. An email
// without an account gets a pending invitation that is completed when the
// account is created. Inviting an existing member changes nothing.
func (s *Service) Invite(ctx context.Context, inviterID, workspaceID, email string) (*structs.InviteResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateVar("email", email, "required,email"); err != nil {
		return nil, err
	}

	ws, err := s.guard.Workspace(ctx, inviterID, workspaceID)
	if err != nil {
		return nil, err
	}

	result := &structs.InviteResult{Workspace: ws}
	created := false

	invitee, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		created, err = s.repo.AddMember(ctx, ws.ID, invitee.ID)
		if err != nil {
			return nil, err
		}
		if created {
			ws.MemberIDs = append(ws.MemberIDs, invitee.ID)
		}
	case ecode.CodeOf(err) == ecode.NothingFound:
		result.Pending = true
		created, err = s.repo.CreateInvitation(ctx, &structs.Invitation{
			ID:          uuid.NewString(),
			WorkspaceID: ws.ID,
			Email:       email,
			InvitedBy:   inviterID,
			CreatedAt:   data.Now(),
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if !created {
		s.logger.Debug(ctx, "Invite changed nothing", "workspace_id", ws.ID, "email", email)
		return result, nil
	}

	s.sendInvite(ctx, inviterID, ws, email)
	s.record(ctx, inviterID, ws.ID, "Invited user", fmt.Sprintf("Invited %s to workspace: %s", email, ws.Name))
	s.logger.Info(ctx, "User invited", "workspace_id", ws.ID, "email", email, "pending", result.Pending)
	return result, nil
}

// sendInvite emails the invitee; a failure is logged and does not fail
// the invite.
func (s *Service) sendInvite(ctx context.Context, inviterID string, ws *structs.Workspace, email string) {
	if s.mailer == nil {
		return
	}
	inviterName := "A TaskHive user"
	if inviter, err := s.users.FindByID(ctx, inviterID); err == nil {
		inviterName = inviter.Username
	}
	if err := s.mailer.SendInvite(ctx, email, ws.Name, inviterName); err != nil {
		s.logger.Warn(ctx, "Failed to send invite email", "error", err, "workspace_id", ws.ID, "email", email)
	}
}

// AcceptPendingInvitations adds userID to every workspace with a pending
// invitation for email and returns the number of workspaces joined.
func (s *Service) AcceptPendingInvitations(ctx context.Context, userID, email string) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	invites, err := s.repo.PendingInvitations(ctx, email)
	if err != nil {
		return 0, err
	}
	joined := 0
	for _, inv := range invites {
		added, err := s.repo.AddMember(ctx, inv.WorkspaceID, userID)
		if err != nil {
			return joined, err
		}
		if err := s.repo.MarkInvitationAccepted(ctx, inv.ID, data.Now()); err != nil {
			return joined, err
		}
		if added {
			joined++
		}
	}
	if joined > 0 {
		s.logger.Info(ctx, "Pending invitations accepted", "user_id", userID, "count", joined)
	}
	return joined, nil
}

// Delete removes a workspace with all of its content. Only the owner may
// delete it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	ws, err := s.guard.Owner(ctx, userID, id)
	if err != nil {
		return err
	}
	paths, err := s.repo.Delete(ctx, ws.ID)
	if err != nil {
		s.logger.Error(ctx, "Failed to delete workspace", "error", err, "workspace_id", ws.ID)
		return err
	}
	if err := oss.DeleteAll(ctx, s.blobs, paths); err != nil {
		s.logger.Warn(ctx, "Failed to delete attachment blobs", "error", err, "workspace_id", ws.ID)
	}
	s.logger.Info(ctx, "Workspace deleted", "workspace_id", ws.ID, "user_id", userID)
	return nil
}

func (s *Service) HandleCreate(c *gin.Context) {
	var req structs.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}

	ws, err := s.Create(c.Request.Context(), ctxutil.GetUserID(c), req.Name)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 201, ws)
}

func (s *Service) HandleList(c *gin.Context) {
	list, err := s.List(c.Request.Context(), ctxutil.GetUserID(c))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, list)
}

func (s *Service) HandleGet(c *gin.Context) {
	ws, err := s.Get(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, ws)
}

func (s *Service) HandleMembers(c *gin.Context) {
	members, err := s.Members(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, members)
}

func (s *Service) HandleInvite(c *gin.Context) {
	var req structs.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}

	result, err := s.Invite(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id"), req.Email)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, result)
}

func (s *Service) HandleDelete(c *gin.Context) {
	if err := s.Delete(c.Request.Context(), ctxutil.GetUserID(c), c.Param("id")); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, 204)
}
