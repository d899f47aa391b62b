package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/client"
	"task-tracker/internal/manager"
	"task-tracker/internal/server"
	"task-tracker/internal/storage"
)

func newCLI(t *testing.T) *client.Client {
	t.Helper()
	s := storage.NewMemoryStorage()
	require.NoError(t, storage.Seed(context.Background(), s, time.Now().UTC()))

	tm := manager.NewTaskManager(s, manager.WithIDGenerator(func() string { return "42" }))
	ts := httptest.NewServer(server.NewRouter(tm))
	t.Cleanup(ts.Close)
	return client.New(ts.URL+"/api/tasks", ts.Client())
}

func runCLI(t *testing.T, c *client.Client, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), c, args, &out)
	return out.String(), err
}

func TestCLIList(t *testing.T) {
	c := newCLI(t)

	out, err := runCLI(t, c, "list")
	require.NoError(t, err)
	assert.Equal(t, "1: Learn React [Pending]\n2: Build Express API [Completed]\n", out)

	out, err = runCLI(t, c, "list", "--filter=pending")
	require.NoError(t, err)
	assert.Equal(t, "1: Learn React [Pending]\n", out)
}

func TestCLILifecycle(t *testing.T) {
	c := newCLI(t)

	out, err := runCLI(t, c, "add", "--name=Write spec")
	require.NoError(t, err)
	assert.Equal(t, "Added task with ID 42\n", out)

	out, err = runCLI(t, c, "rename", "--id=42", "--name=Write the spec")
	require.NoError(t, err)
	assert.Contains(t, out, `"Write the spec"`)

	_, err = runCLI(t, c, "done", "--id=42")
	require.NoError(t, err)

	out, err = runCLI(t, c, "list", "--filter=completed")
	require.NoError(t, err)
	assert.Contains(t, out, "42: Write the spec [Completed]")

	out, err = runCLI(t, c, "delete", "--id=42")
	require.NoError(t, err)
	assert.Equal(t, "Task 42 deleted\n", out)
}

func TestCLIErrors(t *testing.T) {
	c := newCLI(t)

	_, err := runCLI(t, c)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, c, "frobnicate")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, c, "add")
	assert.Error(t, err)

	_, err = runCLI(t, c, "done", "--id=2")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = runCLI(t, c, "delete", "--id=missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestCLIHelp(t *testing.T) {
	out, err := runCLI(t, nil, "help")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Usage: tasks"))
}
