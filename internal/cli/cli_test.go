package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskLists/internal/handlers"
	"taskLists/internal/repository/inmemory"
	"taskLists/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t          *testing.T
	server     *httptest.Server
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	storage := inmemory.New()
	srv := httptest.NewServer(handlers.NewRouter(
		service.NewListService(storage, nil),
		service.NewTaskService(storage, nil),
		storage,
	))
	t.Cleanup(srv.Close)

	return &harness{
		t:          t,
		server:     srv,
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(append([]string{"--config", h.configPath, "--server", h.server.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestLists(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("lists", "ls"), "No lists yet")

	assert.Contains(t, h.mustRun("lists", "add", "Work", "--color", "#3366ff"), "Created list 1: Work")

	out := h.mustRun("lists", "ls")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "#3366ff")

	assert.Contains(t, h.mustRun("lists", "edit", "1", "--name", "Job", "--clear-color"), "Updated list 1: Job")
	out = h.mustRun("lists", "show", "1")
	assert.Contains(t, out, "Job")
	assert.Contains(t, out, "Color:")

	assert.Contains(t, h.mustRun("lists", "rm", "1"), "Deleted list 1")

	_, err := h.run("lists", "show", "1")
	assert.ErrorContains(t, err, "Lista no encontrada")
}

func TestListEdit_NothingToChange(t *testing.T) {
	h := newHarness(t)
	h.mustRun("lists", "add", "Work")

	_, err := h.run("lists", "edit", "1")
	assert.ErrorContains(t, err, "nothing to change")
}

func TestTasks(t *testing.T) {
	h := newHarness(t)
	h.mustRun("lists", "add", "Work")

	assert.Contains(t, h.mustRun("tasks", "add", "Report", "--list", "1", "--due", "2026-03-01", "--priority", "1"),
		"Created task 1: Report")
	h.mustRun("tasks", "add", "Milk")

	out := h.mustRun("tasks", "ls")
	assert.Contains(t, out, "Report")
	assert.Contains(t, out, "Milk")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "high")

	out = h.mustRun("tasks", "ls", "--list", "1")
	assert.Contains(t, out, "Report")
	assert.NotContains(t, out, "Milk")

	out = h.mustRun("tasks", "ls", "--unfiled")
	assert.Contains(t, out, "Milk")
	assert.NotContains(t, out, "Report")

	assert.Contains(t, h.mustRun("tasks", "done", "1"), "[x] 1: Report")
	out = h.mustRun("tasks", "ls", "--completed")
	assert.Contains(t, out, "Report")
	out = h.mustRun("tasks", "ls", "--pending")
	assert.NotContains(t, out, "Report")
	assert.Contains(t, out, "Milk")

	assert.Contains(t, h.mustRun("tasks", "undo", "1"), "[ ] 1: Report")

	h.mustRun("tasks", "edit", "1", "--title", "Final report", "--list", "none", "--clear-due")
	out = h.mustRun("tasks", "show", "1")
	assert.Contains(t, out, "Final report")
	assert.Contains(t, out, "List:")
	assert.NotContains(t, out, "2026-03-01")

	assert.Contains(t, h.mustRun("tasks", "rm", "2"), "Deleted task 2")
	_, err := h.run("tasks", "show", "2")
	assert.ErrorContains(t, err, "Tarea no encontrada")
}

func TestTasks_RemoveByList(t *testing.T) {
	h := newHarness(t)
	h.mustRun("lists", "add", "Work")
	h.mustRun("tasks", "add", "a", "--list", "1")
	h.mustRun("tasks", "add", "b", "--list", "1")

	assert.Contains(t, h.mustRun("tasks", "rm", "--list", "1"), "Deleted 2 tasks from list 1")
	assert.Contains(t, h.mustRun("tasks", "ls"), "No tasks found.")

	_, err := h.run("tasks", "rm", "3", "--list", "1")
	assert.Error(t, err)
}

func TestTasks_ServerValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("tasks", "add", "x", "--priority", "7")
	assert.ErrorContains(t, err, "La prioridad debe ser")

	_, err = h.run("tasks", "add", "x", "--list", "9")
	assert.ErrorContains(t, err, "La lista no existe")

	_, err = h.run("tasks", "add", "x", "--due", "tomorrow")
	assert.ErrorContains(t, err, "invalid due date")
}

func TestTasks_FilterFlagsAreExclusive(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("tasks", "ls", "--completed", "--pending")
	assert.Error(t, err)
}

func TestInvalidID(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("tasks", "show", "abc")
	assert.ErrorContains(t, err, "invalid id")
}

func TestConfig_SetServer(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "set-server", "http://tasks.example.com:8080")
	assert.Contains(t, out, "Server set to")

	cfg, err := LoadConfig(h.configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://tasks.example.com:8080", cfg.ServerURL)

	_, err = h.run("config", "set-server", "not a url")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TASKLISTS_SERVER_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)

	cfg.ServerURL = "http://other:3000"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server_url: http://other:3000")

	require.NoError(t, os.WriteFile(path, []byte("server_url: [broken"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestParseDue(t *testing.T) {
	d, err := parseDue("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDue("2026-03-01T10:00:00+01:00")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))

	_, err = parseDue("01/03/2026")
	assert.Error(t, err)
}
