package manager

import (
	"context"
	"sync"
	"time"

	"visiond/pkg/types"
)

// State represents the lifecycle state of the analysis worker.
type State string

const (
	StateIdle   State = "idle"
	StateBusy   State = "busy"
	StateReinit State = "reinitializing"
	StateError  State = "error"
)

// job is one captured frame waiting for analysis.
type job struct {
	frame  []byte
	prompt string
}

type Manager struct {
	cfg ManagerConfig

	mu        sync.Mutex
	state     State
	pending   *job
	sess      InferSession
	modelPath string
	current   string
	history   []types.AnalysisEntry
	lastErr   string

	analysesTotal   uint64
	supersededTotal uint64
	reinitsTotal    uint64

	notifyCh chan struct{} // size 1: wakes the worker, coalesces nudges
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	startTime time.Time
}

func newManager(cfg ManagerConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:       cfg,
		state:     StateIdle,
		notifyCh:  make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	m.wg.Add(1)
	go m.worker()
	return m
}

// Ready reports whether an inference session is initialized.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess != nil
}

// Current returns the text of the most recent analysis (possibly partial
// while streaming) and whether an analysis is in flight.
func (m *Manager) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.state == StateBusy
}

// History returns a copy of the analysis history, oldest first.
func (m *Manager) History() []types.AnalysisEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.AnalysisEntry, len(m.history))
	copy(out, m.history)
	return out
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.StatusResponse{
		State:           string(m.state),
		ModelPath:       m.modelPath,
		SessionReady:    m.sess != nil,
		PendingFrame:    m.pending != nil,
		AnalysesTotal:   m.analysesTotal,
		SupersededTotal: m.supersededTotal,
		ReinitsTotal:    m.reinitsTotal,
		LastError:       m.lastErr,
		UptimeSeconds:   int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix:  time.Now().Unix(),
	}
}

// Close stops the worker and releases the inference session. Pending frames
// are dropped.
func (m *Manager) Close() error {
	m.cancel()
	m.wg.Wait()
	m.mu.Lock()
	sess := m.sess
	m.sess = nil
	m.pending = nil
	m.mu.Unlock()
	if sess != nil {
		return sess.Close()
	}
	return nil
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
