package git

import "fmt"

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	Repo          bool
	CurrentBranch string
	RemoteURL     string
	WorktreeRoot  string
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Repo:          true,
		CurrentBranch: "main",
		RemoteURL:     "https://github.com/user/repo.git",
		WorktreeRoot:  "/tmp/test-repo",
	}
}

func (m *MockGitOps) IsRepo(projectPath string) bool {
	return m.Repo
}

func (m *MockGitOps) GetCurrentBranch(projectPath string) string {
	return m.CurrentBranch
}

func (m *MockGitOps) GetRemoteURL(projectPath string) string {
	return m.RemoteURL
}

func (m *MockGitOps) GetWorktreeRoot(projectPath string) string {
	return m.WorktreeRoot
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{branch=%s, remote=%s, worktree=%s}",
		m.CurrentBranch, m.RemoteURL, m.WorktreeRoot)
}
