package mcp

import (
	"sort"
	"sync"
	"time"
)

// =============================================================================
// SESSION TRACKING
// =============================================================================

const maxToolNames = 50

// SessionTracker tracks tool calls made during one server session
type SessionTracker struct {
	mu            sync.Mutex
	startedAt     time.Time
	toolCalls     int
	failures      int
	toolNames     []string // last maxToolNames tool names called
	pathsAnalyzed map[string]int
}

// SessionStats is a snapshot of a SessionTracker
type SessionStats struct {
	StartedAt     time.Time `json:"started_at"`
	ToolCalls     int       `json:"tool_calls"`
	Failures      int       `json:"failures"`
	ToolNames     []string  `json:"tool_names"`
	PathsAnalyzed []string  `json:"paths_analyzed"`
}

func newSessionTracker() *SessionTracker {
	return &SessionTracker{
		startedAt:     time.Now(),
		pathsAnalyzed: make(map[string]int),
	}
}

// trackCall records a tool call and its outcome
func (t *SessionTracker) trackCall(tool string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.toolCalls++
	if !ok {
		t.failures++
	}
	t.toolNames = append(t.toolNames, tool)
	if len(t.toolNames) > maxToolNames {
		t.toolNames = t.toolNames[len(t.toolNames)-maxToolNames:]
	}
}

// trackPath records a repository analysis target
func (t *SessionTracker) trackPath(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pathsAnalyzed[path]++
}

// Stats returns a copy of the session counters
func (t *SessionTracker) Stats() SessionStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	paths := make([]string, 0, len(t.pathsAnalyzed))
	for p := range t.pathsAnalyzed {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return SessionStats{
		StartedAt:     t.startedAt,
		ToolCalls:     t.toolCalls,
		Failures:      t.failures,
		ToolNames:     append([]string(nil), t.toolNames...),
		PathsAnalyzed: paths,
	}
}
