package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Default filenames for persistence
const (
	defaultQueueFile   = "queue.json"
	defaultHistoryFile = "history.json"
)

// JobStatus defines the lifecycle states of a fetch job.
type JobStatus string

const (
	StatusPending JobStatus = "pending"
	StatusDone    JobStatus = "done"
	StatusSkipped JobStatus = "skipped"
	StatusFailed  JobStatus = "failed"
)

// FetchJob is one video file queued for subtitle download by the scan flow.
type FetchJob struct {
	VideoPath string    `json:"videoPath"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message,omitempty"` // error or result summary

	// Filled in on completion.
	SubtitlePath string `json:"subtitlePath,omitempty"`
	Language     string `json:"language,omitempty"`

	SubmittedAt time.Time `json:"submittedAt,omitempty"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// Manager holds the pending fetch queue and the completed-job history, both
// persisted as JSON under the config directory so an interrupted scan can
// resume where it stopped.
type Manager struct {
	mu      sync.RWMutex
	queue   []FetchJob
	history []FetchJob

	queueFilePath   string
	historyFilePath string
}

// NewManager creates a Manager persisting under configDir and loads any
// existing state. Load failures are logged and start an empty queue rather
// than failing initialization.
func NewManager(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	m := &Manager{
		queue:           []FetchJob{},
		history:         []FetchJob{},
		queueFilePath:   filepath.Join(configDir, defaultQueueFile),
		historyFilePath: filepath.Join(configDir, defaultHistoryFile),
	}

	if err := m.loadFile(m.queueFilePath, &m.queue); err != nil {
		log.Warnf("Failed to load queue state from %s: %v. Starting with empty queue.", m.queueFilePath, err)
		m.queue = []FetchJob{}
	}
	if err := m.loadFile(m.historyFilePath, &m.history); err != nil {
		log.Warnf("Failed to load history from %s: %v. Starting with empty history.", m.historyFilePath, err)
		m.history = []FetchJob{}
	}

	log.Debugf("Queue manager initialized. Queue: %d items, history: %d items.", len(m.queue), len(m.history))
	return m, nil
}

func (m *Manager) loadFile(path string, dest *[]FetchJob) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*dest = []FetchJob{}
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		*dest = []FetchJob{}
		return nil
	}
	var loaded []FetchJob
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	*dest = loaded
	return nil
}

func saveFile(path string, jobs []FetchJob) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue data: %w", err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// save persists both files. Callers must hold at least a read lock.
func (m *Manager) save() error {
	if err := saveFile(m.queueFilePath, m.queue); err != nil {
		return err
	}
	return saveFile(m.historyFilePath, m.history)
}

// Add appends videos to the queue as pending jobs, skipping paths already
// queued, and persists the state. Returns the number of jobs added.
func (m *Manager) Add(videoPaths ...string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queued := make(map[string]bool, len(m.queue))
	for _, job := range m.queue {
		queued[job.VideoPath] = true
	}

	added := 0
	for _, path := range videoPaths {
		if path == "" || queued[path] {
			continue
		}
		m.queue = append(m.queue, FetchJob{
			VideoPath:   path,
			Status:      StatusPending,
			SubmittedAt: time.Now(),
		})
		queued[path] = true
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, m.save()
}

// Pending returns copies of all jobs still waiting to be processed.
func (m *Manager) Pending() []FetchJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []FetchJob
	for _, job := range m.queue {
		if job.Status == StatusPending {
			pending = append(pending, job)
		}
	}
	return pending
}

// History returns a copy of the completed-job history.
func (m *Manager) History() []FetchJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	historyCopy := make([]FetchJob, len(m.history))
	copy(historyCopy, m.history)
	return historyCopy
}

// Complete marks the queued job for videoPath with its final status, moves
// it to history and persists both files.
func (m *Manager) Complete(videoPath string, status JobStatus, message, subtitlePath, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, job := range m.queue {
		if job.VideoPath != videoPath {
			continue
		}
		job.Status = status
		job.Message = message
		job.SubtitlePath = subtitlePath
		job.Language = language
		job.CompletedAt = time.Now()

		m.queue = append(m.queue[:i], m.queue[i+1:]...)
		m.history = append(m.history, job)
		return m.save()
	}
	return fmt.Errorf("no queued job for video %s", videoPath)
}

// Clear drops all pending jobs and persists the (empty) queue.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = []FetchJob{}
	return m.save()
}
