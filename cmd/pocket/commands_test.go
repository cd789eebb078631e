package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pocket"
	"github.com/aretw0/pocket/internal/config"
	"github.com/aretw0/pocket/pkg/core"
)

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{config.EnvDir, config.EnvBackend, config.EnvFormat, config.EnvLogLevel, config.EnvReadOnly} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return filepath.Join(t.TempDir(), "notes")
}

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func createdID(t *testing.T, out string) string {
	t.Helper()
	id := strings.TrimSpace(strings.TrimPrefix(out, "Note created:"))
	require.NotEmpty(t, id, "output: %q", out)
	return id
}

func TestCLI_NoteLifecycle(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "", "new", "  Groceries ", "--body", "milk")
	require.NoError(t, err)
	id := createdID(t, out)

	out, err = run(t, dir, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "milk")

	_, err = run(t, dir, "", "edit", id, "--title", "Shopping ")
	require.NoError(t, err)

	out, err = run(t, dir, "", "show", id, "--json")
	require.NoError(t, err)
	var n core.Note
	require.NoError(t, json.Unmarshal([]byte(out), &n))
	assert.Equal(t, "Shopping ", n.Title, "edit stores values as given")
	assert.Equal(t, "milk", n.Body, "body untouched without --body")

	out, err = run(t, dir, "", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted: "+id)

	_, err = run(t, dir, "", "show", id)
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestCLI_ListFilters(t *testing.T) {
	dir := isolate(t)
	for _, title := range []string{"work/standup", "work/retro", "home/garden"} {
		_, err := run(t, dir, "", "new", title, "--body", "about "+title)
		require.NoError(t, err)
	}

	out, err := run(t, dir, "", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "home/garden", "newest first")

	out, err = run(t, dir, "", "list", "--json", "--query", "RETRO")
	require.NoError(t, err)
	var notes []core.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "work/retro", notes[0].Title)

	out, err = run(t, dir, "", "list", "--json", "--match", "Work/*")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	assert.Len(t, notes, 2)

	_, err = run(t, dir, "", "list", "--match", "[")
	assert.Error(t, err)
}

func TestCLI_ListState(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "", "list", "--state")
	require.NoError(t, err)

	var state map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Contains(t, state, "store")
	assert.Contains(t, state, "fs")
}

func TestCLI_BodyFromStdin(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "line one\nline two\n", "new", "Piped", "--body", "-")
	require.NoError(t, err)
	id := createdID(t, out)

	out, err = run(t, dir, "", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "line one\nline two")
}

func TestCLI_Validation(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, dir, "", "new", strings.Repeat("x", core.MaxTitleLength+1))
	assert.True(t, errors.Is(err, core.ErrTooLong), "got %v", err)

	out, err := run(t, dir, "", "new", "A")
	require.NoError(t, err)
	id := createdID(t, out)

	_, err = run(t, dir, "", "edit", id)
	assert.Error(t, err, "edit without flags")

	_, err = run(t, dir, "", "edit", "missing", "--title", "x")
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)

	_, err = run(t, dir, "", "delete", "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestCLI_DeleteIsAllOrNothing(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, dir, "", "new", "First")
	require.NoError(t, err)
	first := createdID(t, out)
	out, err = run(t, dir, "", "new", "Second")
	require.NoError(t, err)
	second := createdID(t, out)

	_, err = run(t, dir, "", "delete", first, "missing", second)
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)

	for _, id := range []string{first, second} {
		_, err = run(t, dir, "", "show", id)
		assert.NoError(t, err, "%s must survive a rejected delete", id)
	}

	out, err = run(t, dir, "", "delete", first, second)
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted: "+first)
	assert.Contains(t, out, "Note deleted: "+second)
}

func TestCLI_ReadOnly(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "", "new", "Keep")
	require.NoError(t, err)

	_, err = run(t, dir, "", "--read-only", "new", "Nope")
	assert.True(t, errors.Is(err, core.ErrReadOnly), "got %v", err)

	out, err := run(t, dir, "", "--read-only", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Keep")
	assert.NotContains(t, out, "Nope")
}

func TestCLI_Theme(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "", "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = run(t, dir, "", "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, dir, "", "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, dir, "", "theme", "set", "LIGHT")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	_, err = run(t, dir, "", "theme", "set", "sepia")
	assert.Error(t, err)
}

func TestCLI_Backends(t *testing.T) {
	for _, backend := range []string{"bolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := isolate(t)
			_, err := run(t, dir, "", "--backend", backend, "new", "Stored")
			require.NoError(t, err)

			out, err := run(t, dir, "", "--backend", backend, "list")
			require.NoError(t, err)
			assert.Contains(t, out, "Stored")
		})
	}
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format = \"yaml\"\n"), 0o644))

	_, err := run(t, dir, "", "--config", cfgPath, "new", "Yaml")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, core.StorageKey+".yaml"))
	assert.NoError(t, err)
}

func TestCLI_Version(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, dir, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "pocket version "+pocket.Version+"\n", out)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCLI_WatchReportsExternalChanges(t *testing.T) {
	dir := isolate(t)
	a := &app{cfg: config.Default()}
	a.cfg.Dir = dir

	out, errOut := &syncBuffer{}, &syncBuffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, a, cmd) }()

	// Wait for the watcher, then write from another notebook instance.
	require.Eventually(t, func() bool {
		return strings.Contains(errOut.String(), "Watching")
	}, 2*time.Second, 10*time.Millisecond)

	other, err := pocket.New(dir)
	require.NoError(t, err)
	_, err = other.Store.Create(context.Background(), "From elsewhere", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), string(core.EventReload))
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
