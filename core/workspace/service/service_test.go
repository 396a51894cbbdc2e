package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/core/access"
	userrepo "github.com/taskhive/taskhive/core/user/data/repository"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/core/workspace/data/repository"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/data/datatest"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
)

type sentInvite struct{ to, workspace, inviter string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentInvite
	err  error
}

func (m *fakeMailer) SendInvite(_ context.Context, to, ws, inviter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentInvite{to, ws, inviter})
	return nil
}

type recorded struct{ user, workspace, action, location string }

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (r *fakeRecorder) Record(_ context.Context, user, ws, action, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recorded{user, ws, action, location})
}

func (r *fakeRecorder) actions(action string) []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recorded
	for _, e := range r.entries {
		if e.action == action {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	d        *data.Data
	svc      *Service
	users    userrepo.UserRepository
	repo     repository.WorkspaceRepository
	mailer   *fakeMailer
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d := datatest.New(t)
	users, err := userrepo.NewUserRepository(d, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	repo, err := repository.NewWorkspaceRepository(d, logger.Nop(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	guard := access.NewGuard(access.Finders{Workspaces: repo})
	f := &fixture{
		d: d, users: users, repo: repo,
		svc:      NewService(repo, guard, users, logger.Nop()),
		mailer:   &fakeMailer{},
		recorder: &fakeRecorder{},
	}
	f.svc.SetCollaborators(f.mailer, f.recorder, nil)
	return f
}

func (f *fixture) user(t *testing.T, email string) *userstructs.User {
	t.Helper()
	now := data.Now()
	u := &userstructs.User{
		ID: uuid.NewString(), Email: email, Username: strings.Split(email, "@")[0],
		CreatedAt: now, UpdatedAt: now,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestCreateMakesOwnerMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")

	ws, err := f.svc.Create(ctx, owner.ID, "Team")
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.svc.Get(ctx, owner.ID, ws.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !access.IsOwner(owner.ID, got) || !access.IsMember(owner.ID, got) {
		t.Errorf("owner not owner/member: %+v", got)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != owner.ID {
		t.Errorf("members = %v", got.MemberIDs)
	}
	if e := f.recorder.actions("Created workspace"); len(e) != 1 || e[0].location != "Workspace: Team" {
		t.Errorf("activity = %+v", e)
	}

	if _, err := f.svc.Create(ctx, owner.ID, "   "); !errors.Is(err, ecode.ErrValidation) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestInviteExistingUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	bob := f.user(t, "bob@example.com")
	ws, _ := f.svc.Create(ctx, owner.ID, "Team")

	res, err := f.svc.Invite(ctx, owner.ID, ws.ID, "Bob@Example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.Pending || !access.IsMember(bob.ID, res.Workspace) {
		t.Fatalf("invite result = %+v", res)
	}

	if _, err := f.svc.Invite(ctx, owner.ID, ws.ID, "bob@example.com"); err != nil {
		t.Fatalf("repeat invite: %v", err)
	}
	got, _ := f.svc.Get(ctx, bob.ID, ws.ID)
	if len(got.MemberIDs) != 2 {
		t.Errorf("members after repeat invite = %v", got.MemberIDs)
	}
	if n := len(f.recorder.actions("Invited user")); n != 1 {
		t.Errorf("invite activity count = %d, want 1", n)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].inviter != "owner" {
		t.Errorf("mails = %+v", f.mailer.sent)
	}
	want := "Invited bob@example.com to workspace: Team"
	if e := f.recorder.actions("Invited user"); e[0].location != want || e[0].user != owner.ID {
		t.Errorf("activity = %+v", e[0])
	}
}

func TestInvitePendingCompletedOnAccept(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	ws, _ := f.svc.Create(ctx, owner.ID, "Team")

	res, err := f.svc.Invite(ctx, owner.ID, ws.ID, "new@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Pending {
		t.Fatal("invite of unknown email should be pending")
	}
	if _, err := f.svc.Invite(ctx, owner.ID, ws.ID, "new@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(f.mailer.sent) != 1 {
		t.Errorf("mails = %d, want 1", len(f.mailer.sent))
	}

	newcomer := f.user(t, "new@example.com")
	joined, err := f.svc.AcceptPendingInvitations(ctx, newcomer.ID, newcomer.Email)
	if err != nil || joined != 1 {
		t.Fatalf("accept = %d, %v", joined, err)
	}
	got, err := f.svc.Get(ctx, newcomer.ID, ws.ID)
	if err != nil {
		t.Fatalf("newcomer cannot read workspace: %v", err)
	}
	if !access.IsMember(newcomer.ID, got) {
		t.Error("newcomer not a member")
	}

	again, err := f.svc.AcceptPendingInvitations(ctx, newcomer.ID, newcomer.Email)
	if err != nil || again != 0 {
		t.Errorf("second accept = %d, %v", again, err)
	}
}

func TestInviteErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	stranger := f.user(t, "stranger@example.com")
	ws, _ := f.svc.Create(ctx, owner.ID, "Team")

	if _, err := f.svc.Invite(ctx, stranger.ID, ws.ID, "x@example.com"); !errors.Is(err, ecode.ErrForbidden) {
		t.Errorf("non-member invite err = %v", err)
	}
	if _, err := f.svc.Invite(ctx, owner.ID, "missing", "x@example.com"); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("missing workspace err = %v", err)
	}
	if _, err := f.svc.Invite(ctx, owner.ID, ws.ID, "not-an-email"); !errors.Is(err, ecode.ErrValidation) {
		t.Errorf("bad email err = %v", err)
	}
}

func TestInviteMailFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mailer.err = ecode.ErrUnavailable
	owner := f.user(t, "owner@example.com")
	ws, _ := f.svc.Create(ctx, owner.ID, "Team")

	if _, err := f.svc.Invite(ctx, owner.ID, ws.ID, "someone@example.com"); err != nil {
		t.Fatalf("invite failed on mail error: %v", err)
	}
	if n := len(f.recorder.actions("Invited user")); n != 1 {
		t.Errorf("activity count = %d", n)
	}
}

func TestDeleteOwnerOnlyAndCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	bob := f.user(t, "bob@example.com")
	ws, _ := f.svc.Create(ctx, owner.ID, "Team")
	if _, err := f.svc.Invite(ctx, owner.ID, ws.ID, bob.Email); err != nil {
		t.Fatal(err)
	}

	now := data.Now()
	mustExec(t, f.d, `INSERT INTO boards (id, workspace_id, title, created_by, position, created_at, updated_at) VALUES (?, ?, ?, ?, 0, ?, ?)`,
		"b1", ws.ID, "Board", owner.ID, now, now)
	mustExec(t, f.d, `INSERT INTO task_lists (id, board_id, title, position, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		"l1", "b1", "List", now, now)
	mustExec(t, f.d, `INSERT INTO cards (id, list_id, title, description, created_by, created_at, updated_at) VALUES (?, ?, ?, '', ?, ?, ?)`,
		"c1", "l1", "Card", owner.ID, now, now)
	mustExec(t, f.d, `INSERT INTO comments (id, card_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		"cm1", "c1", owner.ID, "hi", now)

	if err := f.svc.Delete(ctx, bob.ID, ws.ID); !errors.Is(err, ecode.ErrForbidden) {
		t.Fatalf("member delete err = %v, want forbidden", err)
	}
	if err := f.svc.Delete(ctx, owner.ID, ws.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Get(ctx, owner.ID, ws.ID); !errors.Is(err, ecode.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	for _, table := range []string{"boards", "task_lists", "cards", "comments", "workspace_members"} {
		var n int
		if err := f.d.Get(ctx, &n, `SELECT COUNT(*) FROM `+table); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s rows left = %d", table, n)
		}
	}
}

func mustExec(t *testing.T, d *data.Data, q string, args ...any) {
	t.Helper()
	if _, err := d.Exec(context.Background(), q, args...); err != nil {
		t.Fatalf("%s: %v", q, err)
	}
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	stranger := f.user(t, "stranger@example.com")
	ws, _ := f.svc.Create(context.Background(), owner.ID, "Team")

	as := func(uid string) gin.HandlerFunc {
		return func(c *gin.Context) {
			ctxutil.BindGin(c, ctxutil.SetUserID(c.Request.Context(), uid))
		}
	}

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   string
		want   int
	}{
		{"create", owner.ID, http.MethodPost, "/workspaces", `{"name":"Side"}`, http.StatusCreated},
		{"create invalid", owner.ID, http.MethodPost, "/workspaces", `{}`, http.StatusBadRequest},
		{"get member", owner.ID, http.MethodGet, "/workspaces/" + ws.ID, "", http.StatusOK},
		{"get stranger", stranger.ID, http.MethodGet, "/workspaces/" + ws.ID, "", http.StatusForbidden},
		{"get missing", owner.ID, http.MethodGet, "/workspaces/nope", "", http.StatusNotFound},
		{"members", owner.ID, http.MethodGet, "/workspaces/" + ws.ID + "/members", "", http.StatusOK},
		{"invite", owner.ID, http.MethodPost, "/workspaces/" + ws.ID + "/invite", `{"email":"z@example.com"}`, http.StatusOK},
		{"invite bad email", owner.ID, http.MethodPost, "/workspaces/" + ws.ID + "/invite", `{"email":"z"}`, http.StatusBadRequest},
		{"delete stranger", stranger.ID, http.MethodDelete, "/workspaces/" + ws.ID, "", http.StatusForbidden},
		{"delete owner", owner.ID, http.MethodDelete, "/workspaces/" + ws.ID, "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			g := r.Group("", as(tt.user))
			g.POST("/workspaces", f.svc.HandleCreate)
			g.GET("/workspaces/:id", f.svc.HandleGet)
			g.GET("/workspaces/:id/members", f.svc.HandleMembers)
			g.POST("/workspaces/:id/invite", f.svc.HandleInvite)
			g.DELETE("/workspaces/:id", f.svc.HandleDelete)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
