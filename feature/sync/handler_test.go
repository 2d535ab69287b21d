package sync

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"lakehouse-utils/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := server.NewApp(server.Config{})
	handler := NewHandler(NewService(zap.NewNop()))
	handler.RegisterRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

const reconcileBody = `{
	"new": {"columns": ["id", "name", "status"], "rows": [
		{"id": 2, "name": "Bob", "status": "active"},
		{"id": 3, "name": "Charles", "status": "active"}
	]},
	"historic": {"columns": ["id", "name", "status"], "rows": [
		{"id": 1, "name": "Alice", "status": "active"},
		{"id": 2, "name": "Bob", "status": "inactive"}
	]},
	"key": ["id"],
	"include_changed_columns": true,
	"plan": true
}`

func TestHandleReconcile(t *testing.T) {
	app := setupTestApp(t)

	status, body := post(t, app, "/sync/reconcile", reconcileBody)
	require.Equal(t, fiber.StatusOK, status)

	summary := body["summary"].(map[string]any)
	assert.Equal(t, 3.0, summary["records_processed"])
	assert.Equal(t, 1.0, summary["records_created"])
	assert.Equal(t, 1.0, summary["records_updated"])
	assert.Equal(t, 1.0, summary["records_deleted"])
	assert.Equal(t, 0.0, summary["records_kept"])

	update := body["to_update"].(map[string]any)
	rows := update["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "active", row["status"])
	assert.Equal(t, "inactive", row["old_status"])
	assert.Equal(t, []any{"status"}, row["changed_columns"])
	assert.Equal(t, "Update", row["type_of_change"])

	for _, name := range []string{"to_create", "to_delete", "to_keep"} {
		assert.Contains(t, body, name)
	}

	plan := body["plan"].(map[string]any)
	assert.Len(t, plan["actions"], 3)
}

func TestHandleReconcile_Errors(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"Malformed", `{"new":`, fiber.StatusBadRequest},
		{"MissingSnapshot", `{"new": {"columns": ["id"], "rows": []}, "key": ["id"]}`, fiber.StatusBadRequest},
		{
			"AmbiguousKey",
			`{"new": {"columns": ["id"], "rows": [{"id": 1}, {"id": 1}]},
			  "historic": {"columns": ["id"], "rows": []}, "key": ["id"]}`,
			fiber.StatusUnprocessableEntity,
		},
		{
			"SchemaMismatch",
			`{"new": {"columns": ["id", "a"], "rows": []},
			  "historic": {"columns": ["id", "b"], "rows": []}, "key": ["id"]}`,
			fiber.StatusUnprocessableEntity,
		},
		{
			"SchemaMissingColumn",
			`{"new": {"columns": ["id"], "rows": []},
			  "historic": {"columns": ["id"], "rows": []}, "key": ["id"],
			  "schema": {"ghost": "Int64"}}`,
			fiber.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/sync/reconcile", tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleReconcile_AppliesSchema(t *testing.T) {
	app := setupTestApp(t)

	body := `{
		"new": {"columns": ["id", "score"], "rows": [{"id": "1", "score": 1}]},
		"historic": {"columns": ["id", "score"], "rows": [{"id": 1.0, "score": 1}]},
		"key": ["id"],
		"schema": {"id": "Int64"}
	}`

	status, out := post(t, app, "/sync/reconcile", body)
	require.Equal(t, fiber.StatusOK, status)
	summary := out["summary"].(map[string]any)
	assert.Equal(t, 1.0, summary["records_kept"])
	assert.NotContains(t, out, "plan")
}

func TestHandleEnforce(t *testing.T) {
	app := setupTestApp(t)

	status, out := post(t, app, "/sync/enforce", `{
		"table": {"columns": ["n", "flag"], "rows": [{"n": "4", "flag": "yes"}, {"n": 1.5, "flag": null}]},
		"schema": {"n": "Int64", "flag": "boolean"}
	}`)
	require.Equal(t, fiber.StatusOK, status)

	rows := out["table"].(map[string]any)["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"n": 4.0, "flag": true}, rows[0])
	assert.Equal(t, map[string]any{"n": nil, "flag": nil}, rows[1])
}

func TestHandleEnforce_Errors(t *testing.T) {
	app := setupTestApp(t)

	status, _ := post(t, app, "/sync/enforce", `{"table": {"columns": ["n"], "rows": []}}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = post(t, app, "/sync/enforce", `{"table": {"columns": ["n"], "rows": []}, "schema": {"n": "complex"}}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = post(t, app, "/sync/enforce", `{"table": {"columns": ["n"], "rows": []}, "schema": {"m": "Int64"}}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestFeature(t *testing.T) {
	f := NewFeature(zap.NewNop(), true)
	assert.Equal(t, "sync", f.Name())
	assert.True(t, f.IsEnabled())
	assert.NotNil(t, f.Service())

	app := fiber.New()
	require.NoError(t, f.Load(app))
}
