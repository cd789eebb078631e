package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LockFile is created in the working directory while a commit is in flight.
const LockFile = ".pocket.lock"

// ErrLockTimeout is returned when another process holds the lock for too long.
var ErrLockTimeout = errors.New("timed out waiting for git lock")

// Client runs git commands in a notes directory. Commits from concurrent
// pocket processes are serialized through a lock file.
type Client struct {
	WorkDir     string
	Logger      *slog.Logger
	LockTimeout time.Duration
	lockPath    string
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir:     workDir,
		Logger:      logger,
		LockTimeout: 5 * time.Second,
		lockPath:    LockFile,
	}
}

// IsInstalled reports whether a git binary is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Lock acquires the lock file, polling until it is free or LockTimeout expires.
// The returned func releases it.
func (c *Client) Lock() (func(), error) {
	fullLockPath := filepath.Join(c.WorkDir, c.lockPath)
	deadline := time.Now().Add(c.LockTimeout)

	for {
		f, err := os.OpenFile(fullLockPath, os.O_CREATE|os.O_EXCL, 0666)
		if err == nil {
			_ = f.Close()
			return func() {
				_ = os.Remove(fullLockPath)
			}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if c.LockTimeout > 0 && time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, fullLockPath)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Run executes a raw git command in the working directory.
// It does not take the lock; callers that mutate the index use Lock.
func (c *Client) Run(args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = c.WorkDir
	cmd.Env = withIdentity(os.Environ())

	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return strings.TrimSpace(output), nil
}

// withIdentity fills in an author and committer so commits work on machines
// without a configured git identity.
func withIdentity(env []string) []string {
	defaults := map[string]string{
		"GIT_AUTHOR_NAME":     "pocket",
		"GIT_AUTHOR_EMAIL":    "pocket@localhost",
		"GIT_COMMITTER_NAME":  "pocket",
		"GIT_COMMITTER_EMAIL": "pocket@localhost",
	}
	for k, v := range defaults {
		if os.Getenv(k) == "" {
			env = append(env, k+"="+v)
		}
	}
	return env
}

// IsRepo reports whether WorkDir is inside a git work tree.
func (c *Client) IsRepo() bool {
	out, err := c.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Init initializes a repository. Re-running it on an existing one is safe.
func (c *Client) Init() error {
	_, err := c.Run("init")
	return err
}

// Add stages files.
func (c *Client) Add(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"add"}, files...)
	_, err := c.Run(args...)
	return err
}

// Unstage drops files from the index, leaving the working tree as is.
func (c *Client) Unstage(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"reset", "-q", "--"}, files...)
	_, err := c.Run(args...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges() (bool, error) {
	out, err := c.Run("diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit records the staged changes.
func (c *Client) Commit(msg string) error {
	_, err := c.Run("commit", "-m", msg)
	return err
}

// Log returns the last n commit subjects, newest first.
func (c *Client) Log(n int) ([]string, error) {
	out, err := c.Run("log", fmt.Sprintf("-%d", n), "--format=%s")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
