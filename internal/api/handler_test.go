package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/app"
	"taskflow/internal/config"
	internaldb "taskflow/internal/db"
	"taskflow/internal/domain"
	"taskflow/internal/middleware"
	"taskflow/internal/testutil"
)

const testSecret = "api-test-secret"

type apiFixture struct {
	srv     *httptest.Server
	db      *sql.DB
	admin   *domain.User
	manager *domain.User
	member  *domain.User
	outside *domain.User
	project *domain.Project
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	logger := testutil.DiscardLogger()

	a, err := app.New(app.Deps{Cfg: &config.Config{}, WriteDB: writeDB, ReadDB: readDB, Logger: logger})
	require.NoError(t, err)
	validator, err := middleware.NewHS256Validator(testSecret, "")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(validator, a.UserLookup, logger))
		NewHandler(a.Services, logger).Register(r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	f := &apiFixture{
		srv:     srv,
		db:      writeDB,
		admin:   testutil.CreateUser(t, writeDB, "admin", domain.RoleAdmin),
		manager: testutil.CreateUser(t, writeDB, "manager", domain.RoleProjectManager),
		member:  testutil.CreateUser(t, writeDB, "member", domain.RoleUser),
		outside: testutil.CreateUser(t, writeDB, "outside", domain.RoleUser),
	}
	f.project = testutil.CreateProject(t, writeDB, f.manager, "Apollo")
	return f
}

func token(t *testing.T, u *domain.User) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// do sends a request as u (anonymous when nil) and decodes a JSON
// response into out when out is non-nil.
func (f *apiFixture) do(t *testing.T, u *domain.User, method, path string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, u))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	f := setupAPI(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, nil, http.MethodGet, "/v1/me", nil, nil))

	var me User
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodGet, "/v1/me", nil, &me))
	assert.Equal(t, f.member.ID, me.ID)
	assert.Equal(t, domain.RoleUser, me.Role)
}

func TestAPI_InvitationFlow(t *testing.T) {
	f := setupAPI(t)
	projectPath := "/v1/projects/" + f.project.ID

	var inv Invitation
	status := f.do(t, f.manager, http.MethodPost, projectPath+"/invitations",
		map[string]string{"invitee_id": f.member.ID, "role": "DEVELOPER"}, &inv)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.InvitationPending, inv.Status)

	var dup Error
	status = f.do(t, f.manager, http.MethodPost, projectPath+"/invitations",
		map[string]string{"invitee_id": f.member.ID, "role": "TESTER"}, &dup)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, http.StatusConflict, dup.Code)

	var inbox Page[Notification]
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodGet, "/v1/notifications?unread=true", nil, &inbox))
	require.Len(t, inbox.Items, 1)
	require.NotNil(t, inbox.Items[0].LinkPath)
	assert.Equal(t, "/invitations/"+inv.ID, *inbox.Items[0].LinkPath)

	assert.Equal(t, http.StatusForbidden,
		f.do(t, f.outside, http.MethodPost, "/v1/invitations/"+inv.ID+"/respond", map[string]string{"decision": "accept"}, nil))

	var accepted Invitation
	require.Equal(t, http.StatusOK,
		f.do(t, f.member, http.MethodPost, "/v1/invitations/"+inv.ID+"/respond", map[string]string{"decision": "accept"}, &accepted))
	assert.Equal(t, domain.InvitationAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)

	assert.Equal(t, http.StatusConflict,
		f.do(t, f.member, http.MethodPost, "/v1/invitations/"+inv.ID+"/respond", map[string]string{"decision": "decline"}, nil))

	var members Page[Member]
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodGet, projectPath+"/members", nil, &members))
	assert.EqualValues(t, 2, members.Total)

	var mine Page[Invitation]
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodGet, "/v1/invitations?status=ACCEPTED", nil, &mine))
	assert.Len(t, mine.Items, 1)
}

func TestAPI_ReassignFlow(t *testing.T) {
	f := setupAPI(t)

	var added Member
	require.Equal(t, http.StatusCreated, f.do(t, f.manager, http.MethodPost, "/v1/projects/"+f.project.ID+"/members",
		map[string]string{"user_id": f.member.ID}, &added))
	assert.Equal(t, domain.ProjectRoleDeveloper, added.Role)

	var created Task
	require.Equal(t, http.StatusCreated, f.do(t, f.member, http.MethodPost, "/v1/tasks",
		map[string]any{"project_id": f.project.ID, "title": "Write docs", "assignee_id": f.member.ID}, &created))
	taskPath := "/v1/tasks/" + created.ID

	// Without REASSIGN_TASK the member files a request.
	var pending ReassignResult
	require.Equal(t, http.StatusAccepted, f.do(t, f.member, http.MethodPost, taskPath+"/reassign",
		map[string]string{"new_assignee_id": f.outside.ID, "comment": "on leave"}, &pending))
	assert.False(t, pending.Direct)
	require.NotNil(t, pending.Request)
	assert.Equal(t, domain.ReassignPending, pending.Request.Status)

	var queue Page[ReassignRequest]
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodGet, "/v1/projects/"+f.project.ID+"/reassign-requests", nil, &queue))
	assert.Len(t, queue.Items, 1)

	reviewPath := "/v1/reassign-requests/" + pending.Request.ID + "/review"
	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodPost, reviewPath, map[string]string{"decision": "APPROVED"}, nil))

	var reviewed ReassignRequest
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodPost, reviewPath, map[string]string{"decision": "APPROVED"}, &reviewed))
	assert.Equal(t, domain.ReassignApproved, reviewed.Status)
	assert.Equal(t, http.StatusConflict, f.do(t, f.manager, http.MethodPost, reviewPath, map[string]string{"decision": "REJECTED"}, nil))

	var got Task
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodGet, taskPath, nil, &got))
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, f.outside.ID, *got.AssigneeID)

	var members Page[Member]
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodGet, "/v1/projects/"+f.project.ID+"/members", nil, &members))
	assert.EqualValues(t, 3, members.Total, "new assignee is back-filled as a member")

	// The manager reassigns directly.
	var direct ReassignResult
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodPost, taskPath+"/reassign",
		map[string]string{"new_assignee_id": f.member.ID}, &direct))
	assert.True(t, direct.Direct)
	require.NotNil(t, direct.Task)
	assert.Equal(t, f.member.ID, *direct.Task.AssigneeID)
}

func TestAPI_PermissionGrantRevoke(t *testing.T) {
	f := setupAPI(t)
	path := "/v1/users/" + f.member.ID + "/permissions"
	body := map[string]string{"permission": "REASSIGN_TASK"}

	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodPost, path, body, nil))
	assert.Equal(t, http.StatusNoContent, f.do(t, f.admin, http.MethodPost, path, body, nil))
	assert.Equal(t, http.StatusConflict, f.do(t, f.admin, http.MethodPost, path, body, nil))

	var perms map[string][]domain.Permission
	require.Equal(t, http.StatusOK, f.do(t, f.admin, http.MethodGet, path, nil, &perms))
	assert.Equal(t, []domain.Permission{domain.PermReassignTask}, perms["permissions"])

	assert.Equal(t, http.StatusNoContent, f.do(t, f.admin, http.MethodDelete, path+"/REASSIGN_TASK", nil, nil))
	assert.Equal(t, http.StatusNoContent, f.do(t, f.admin, http.MethodDelete, path+"/REASSIGN_TASK", nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.admin, http.MethodPost, path, map[string]string{"permission": "FLY"}, nil))
}

func TestAPI_ProjectLifecycle(t *testing.T) {
	f := setupAPI(t)
	testutil.Grant(t, f.db, f.member, domain.PermCreateProject)

	var p Project
	require.Equal(t, http.StatusCreated, f.do(t, f.member, http.MethodPost, "/v1/projects",
		map[string]string{"name": "Gemini", "description": "orbital"}, &p))
	assert.Equal(t, domain.ProjectStatusPendingReview, p.Status)
	path := "/v1/projects/" + p.ID

	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodPost, path+"/review", map[string]string{"decision": "APPROVE"}, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.manager, http.MethodPost, path+"/review", map[string]string{"decision": "MAYBE"}, nil))

	var approved Project
	require.Equal(t, http.StatusOK, f.do(t, f.manager, http.MethodPost, path+"/review", map[string]string{"decision": "APPROVE"}, &approved))
	assert.Equal(t, domain.ProjectStatusActive, approved.Status)
	assert.Equal(t, http.StatusConflict, f.do(t, f.manager, http.MethodPost, path+"/review", map[string]string{"decision": "REJECT"}, nil))

	var archived Project
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodPost, path+"/archive", nil, &archived))
	assert.Equal(t, domain.ProjectStatusArchived, archived.Status)

	assert.Equal(t, http.StatusConflict, f.do(t, f.manager, http.MethodPost, path+"/invitations",
		map[string]string{"invitee_id": f.outside.ID, "role": "VIEWER"}, nil))
}

func TestAPI_ErrorMapping(t *testing.T) {
	f := setupAPI(t)

	var e Error
	require.Equal(t, http.StatusNotFound, f.do(t, f.manager, http.MethodGet, "/v1/projects/nope", nil, &e))
	assert.Equal(t, http.StatusNotFound, e.Code)
	assert.NotEmpty(t, e.RequestID)

	assert.Equal(t, http.StatusBadRequest, f.do(t, f.manager, http.MethodPost, "/v1/projects", "{not json", nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.manager, http.MethodPost, "/v1/projects", map[string]string{"name": "x", "owner": "y"}, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.manager, http.MethodPost, "/v1/projects", nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.manager, http.MethodGet, "/v1/users?max_results=-1", nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.member, http.MethodGet, "/v1/notifications?unread=perhaps", nil, nil))
	assert.Equal(t, http.StatusForbidden, f.do(t, f.outside, http.MethodGet, "/v1/projects/"+f.project.ID, nil, nil))
}

func TestAPI_UsersPagination(t *testing.T) {
	f := setupAPI(t)

	var first Page[User]
	require.Equal(t, http.StatusOK, f.do(t, f.admin, http.MethodGet, "/v1/users?max_results=3", nil, &first))
	assert.Len(t, first.Items, 3)
	assert.EqualValues(t, 4, first.Total)
	require.NotEmpty(t, first.NextPageToken)

	var second Page[User]
	require.Equal(t, http.StatusOK, f.do(t, f.admin, http.MethodGet, "/v1/users?max_results=3&page_token="+first.NextPageToken, nil, &second))
	assert.Len(t, second.Items, 1)
	assert.Empty(t, second.NextPageToken)

	assert.Equal(t, http.StatusForbidden, f.do(t, f.member, http.MethodGet, "/v1/users", nil, nil))
}

func TestAPI_DeactivatedUserIsRejected(t *testing.T) {
	f := setupAPI(t)

	var u User
	require.Equal(t, http.StatusOK, f.do(t, f.admin, http.MethodPut, "/v1/users/"+f.member.ID+"/active", map[string]bool{"active": false}, &u))
	assert.False(t, u.Active)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, f.member, http.MethodGet, "/v1/me", nil, nil))
	assert.Equal(t, http.StatusBadRequest, f.do(t, f.admin, http.MethodPut, "/v1/users/"+f.member.ID+"/active", map[string]string{}, nil))
}

func TestAPI_NotificationsMarkRead(t *testing.T) {
	f := setupAPI(t)
	require.Equal(t, http.StatusCreated, f.do(t, f.manager, http.MethodPost, "/v1/projects/"+f.project.ID+"/invitations",
		map[string]string{"invitee_id": f.member.ID, "role": "VIEWER"}, nil))

	var inbox Page[Notification]
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodGet, "/v1/notifications", nil, &inbox))
	require.Len(t, inbox.Items, 1)

	assert.Equal(t, http.StatusNotFound, f.do(t, f.outside, http.MethodPost, "/v1/notifications/"+inbox.Items[0].ID+"/read", nil, nil))
	assert.Equal(t, http.StatusNoContent, f.do(t, f.member, http.MethodPost, "/v1/notifications/"+inbox.Items[0].ID+"/read", nil, nil))

	var marked map[string]int64
	require.Equal(t, http.StatusOK, f.do(t, f.member, http.MethodPost, "/v1/notifications/read-all", nil, &marked))
	assert.EqualValues(t, 0, marked["marked"])
}
