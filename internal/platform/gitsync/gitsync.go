// Package gitsync keeps the recipe directory in sync with its remote
// git repository. Every operation is best effort: failures come back
// as structured results with human-readable messages, never as raised
// errors.
package gitsync

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Status describes the local state of the recipe repository.
type Status struct {
	HasChanges bool     `json:"has_changes"`
	Files      []string `json:"files"`
	Error      string   `json:"error,omitempty"`
}

// Result is the outcome of a full sync run.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// Syncer runs git commands in the recipe directory, each bounded by a
// fixed timeout.
type Syncer struct {
	dir     string
	timeout time.Duration
	logger  *zap.Logger

	// run executes one git command; swapped out in tests.
	run func(args ...string) (bool, string)
	now func() time.Time
}

// NewSyncer creates a Syncer for the given directory.
func NewSyncer(dir string, timeout time.Duration, logger *zap.Logger) *Syncer {
	s := &Syncer{dir: dir, timeout: timeout, logger: logger, now: time.Now}
	s.run = s.runGit
	return s
}

// runGit runs a git command in the recipe directory and returns its
// success flag and combined output. A command that exceeds the timeout
// reports failure rather than blocking the caller.
func (s *Syncer) runGit(args ...string) (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.dir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))

	if ctx.Err() == context.DeadlineExceeded {
		return false, "Command timed out"
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, output
		}
		return false, err.Error()
	}
	return true, output
}

// Status reports whether the recipe directory has uncommitted changes.
func (s *Syncer) Status() *Status {
	ok, output := s.run("status", "--porcelain")
	if !ok {
		return &Status{Error: output, Files: []string{}}
	}

	var files []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return &Status{HasChanges: len(files) > 0, Files: files}
}

// Pull rebases the local branch onto the remote.
func (s *Syncer) Pull() (bool, string) {
	return s.run("pull", "--rebase")
}

// Sync performs a full round trip: pull, stage, commit, push. A rebase
// conflict needs manual intervention and is reported distinctly from
// other failures.
func (s *Syncer) Sync() *Result {
	result := &Result{Details: []string{}}

	status := s.Status()
	if status.Error != "" {
		result.Message = fmt.Sprintf("Git error: %s", status.Error)
		return result
	}

	pullOK, pullMsg := s.Pull()
	result.Details = append(result.Details, "Pull: "+orOK(pullMsg))

	if !pullOK && strings.Contains(strings.ToLower(pullMsg), "conflict") {
		result.Message = "Conflict detected - manual fix needed"
		return result
	}

	if !status.HasChanges {
		result.Success = true
		result.Message = "Already up to date"
		return result
	}

	addOK, addMsg := s.run("add", ".")
	result.Details = append(result.Details, "Add: "+orOK(addMsg))
	if !addOK {
		result.Message = fmt.Sprintf("Failed to stage: %s", addMsg)
		return result
	}

	commitMsg := fmt.Sprintf("Update recipes %s", s.now().Format("2006-01-02 15:04"))
	commitOK, commitOut := s.run("commit", "-m", commitMsg)
	result.Details = append(result.Details, "Commit: "+orOK(commitOut))
	if !commitOK && !strings.Contains(strings.ToLower(commitOut), "nothing to commit") {
		result.Message = fmt.Sprintf("Failed to commit: %s", commitOut)
		return result
	}

	pushOK, pushMsg := s.run("push")
	result.Details = append(result.Details, "Push: "+orOK(pushMsg))
	if !pushOK {
		result.Message = fmt.Sprintf("Failed to push: %s", pushMsg)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("Synced %d file(s)", len(status.Files))
	s.logger.Info("recipes synced", zap.Int("files", len(status.Files)))
	return result
}

func orOK(msg string) string {
	if msg == "" {
		return "OK"
	}
	return msg
}
