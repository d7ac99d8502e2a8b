package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-service/internal/api/http/handlers"
	"github.com/spec-kit/issue-service/internal/domain"
	"github.com/spec-kit/issue-service/internal/events"
	"github.com/spec-kit/issue-service/internal/observability"
	"github.com/spec-kit/issue-service/internal/repository"
	"github.com/spec-kit/issue-service/internal/service"
	"github.com/spec-kit/issue-service/internal/tenant"
)

type memIssueRepo struct {
	mu     sync.Mutex
	issues map[string]domain.Issue
	seq    int
}

var _ repository.IssueRepository = (*memIssueRepo)(nil)

func (r *memIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	issue.ID = fmt.Sprintf("issue-%d", r.seq)
	issue.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	issue.UpdatedAt = issue.CreatedAt
	r.issues[issue.ID] = *issue
	return nil
}

func (r *memIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := issue
	return &copied, nil
}

func (r *memIssueRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Issue
	for _, issue := range r.issues {
		if issue.OrganizationID == organizationID {
			result = append(result, issue)
		}
	}
	return result, nil
}

func (r *memIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return pgx.ErrNoRows
	}
	issue.UpdatedAt = time.Now()
	r.issues[issue.ID] = *issue
	return nil
}

func (r *memIssueRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.issues, id)
	return nil
}

type memActivityRepo struct {
	mu      sync.Mutex
	entries []domain.Activity
	seq     int
}

var _ repository.ActivityRepository = (*memActivityRepo)(nil)

func (r *memActivityRepo) Create(_ context.Context, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	activity.ID = fmt.Sprintf("activity-%d", r.seq)
	activity.CreatedAt = time.Now()
	r.entries = append(r.entries, *activity)
	return nil
}

func (r *memActivityRepo) ListByIssue(_ context.Context, issueID, organizationID string) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Activity
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.IssueID == issueID && entry.OrganizationID == organizationID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  &memIssueRepo{issues: make(map[string]domain.Issue)},
		Activity:   service.NewActivityService(&memActivityRepo{}),
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("issue-service", "test", nil, nil),
		Issues: handlers.NewIssuesHandler(issueService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, tc *domain.TenantContext) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc != nil {
		req.Header.Set(tenant.HeaderUserID, tc.UserID)
		req.Header.Set(tenant.HeaderOrganizationID, tc.OrganizationID)
		req.Header.Set(tenant.HeaderUserRole, string(tc.Role))
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func dataObj(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response missing data object: %v", body)
	return data
}

var (
	orgAAdmin  = &domain.TenantContext{UserID: "u-admin", OrganizationID: "org-a", Role: domain.RoleAdmin}
	orgAMember = &domain.TenantContext{UserID: "u-member", OrganizationID: "org-a", Role: domain.RoleMember}
	orgBAdmin  = &domain.TenantContext{UserID: "u-other", OrganizationID: "org-b", Role: domain.RoleAdmin}
)

func TestRoutesRejectMissingTenantHeaders(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/issues", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestCreateIssue(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/issues", `{"title":"Broken login","description":"500 on submit"}`, orgAMember)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := dataObj(t, body)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "OPEN", data["status"])
	assert.Equal(t, "org-a", data["organization_id"])
	assert.Nil(t, data["assignee_id"])
}

func TestCreateIssueRequiresTitle(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/issues", `{"description":"no title"}`, orgAMember)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestGetIssueTenantIsolation(t *testing.T) {
	app := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/issues", `{"title":"t"}`, orgAMember)
	id := dataObj(t, created)["id"].(string)

	resp, _ := doJSON(t, app, "GET", "/issues/"+id, "", orgAMember)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, "GET", "/issues/"+id, "", orgBAdmin)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, body = doJSON(t, app, "GET", "/issues/no-such-id", "", orgAMember)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestMemberPatchingStatusIsForbidden(t *testing.T) {
	app := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/issues", `{"title":"t"}`, orgAMember)
	id := dataObj(t, created)["id"].(string)

	resp, body := doJSON(t, app, "PATCH", "/issues/"+id, `{"status":"CLOSED"}`, orgAMember)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, body = doJSON(t, app, "GET", "/issues/"+id, "", orgAMember)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OPEN", dataObj(t, body)["status"])
}

func TestAdminPatchRecordsActivity(t *testing.T) {
	app := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/issues", `{"title":"t","assignee_id":"u1"}`, orgAAdmin)
	id := dataObj(t, created)["id"].(string)

	resp, body := doJSON(t, app, "PATCH", "/issues/"+id, `{"status":"CLOSED","assignee_id":null}`, orgAAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := dataObj(t, body)
	assert.Equal(t, "CLOSED", data["status"])
	assert.Nil(t, data["assignee_id"])

	resp, body = doJSON(t, app, "GET", "/issues/"+id+"/activity", "", orgAAdmin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	fields := map[string]map[string]any{}
	for _, item := range items {
		entry := item.(map[string]any)
		fields[entry["field"].(string)] = entry
	}
	statusEntry := fields["status"]
	require.NotNil(t, statusEntry)
	assert.Equal(t, "OPEN", statusEntry["old_value"])
	assert.Equal(t, "CLOSED", statusEntry["new_value"])

	assigneeEntry := fields["assigneeId"]
	require.NotNil(t, assigneeEntry)
	assert.Equal(t, "u1", assigneeEntry["old_value"])
	assert.Equal(t, "unassigned", assigneeEntry["new_value"])
}

func TestPatchRejectsInvalidStatus(t *testing.T) {
	app := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/issues", `{"title":"t"}`, orgAAdmin)
	id := dataObj(t, created)["id"].(string)

	resp, body := doJSON(t, app, "PATCH", "/issues/"+id, `{"status":"RESOLVED"}`, orgAAdmin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestDeleteIssue(t *testing.T) {
	app := newTestApp(t)

	_, created := doJSON(t, app, "POST", "/issues", `{"title":"t"}`, orgAAdmin)
	id := dataObj(t, created)["id"].(string)

	resp, body := doJSON(t, app, "DELETE", "/issues/"+id, "", orgAMember)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, _ = doJSON(t, app, "DELETE", "/issues/"+id, "", orgAAdmin)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/issues/"+id, "", orgAAdmin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestListIssuesScopedToOrganization(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, "POST", "/issues", `{"title":"a1"}`, orgAMember)
	doJSON(t, app, "POST", "/issues", `{"title":"a2"}`, orgAMember)
	doJSON(t, app, "POST", "/issues", `{"title":"b1"}`, orgBAdmin)

	resp, body := doJSON(t, app, "GET", "/issues", "", orgAMember)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestHealthLiveIsOpen(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, "GET", "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}
