package manager

import (
	"os"
	"strings"
	"time"

	"visiond/pkg/types"
)

// Enqueue hands a captured frame to the analysis worker. It never blocks and
// never surfaces analysis errors: when the worker is busy the frame only
// replaces the pending one (latest wins), and any frame it supersedes is
// discarded without being analyzed.
func (m *Manager) Enqueue(frame []byte, prompt string) {
	if len(frame) == 0 {
		return
	}
	m.mu.Lock()
	if m.pending != nil {
		m.supersededTotal++
		framesSuperseded.Inc()
	}
	m.pending = &job{frame: frame, prompt: prompt}
	m.mu.Unlock()

	select {
	case m.notifyCh <- struct{}{}:
	default: // worker already nudged
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.notifyCh:
			m.drain()
		}
	}
}

// drain processes pending frames until the mailbox is empty. Each round takes
// the newest frame; anything enqueued while an analysis runs is picked up by
// the next round, so no enqueued work is starved.
func (m *Manager) drain() {
	for {
		if m.ctx.Err() != nil {
			return
		}
		m.mu.Lock()
		j := m.pending
		m.pending = nil
		if j == nil {
			m.state = StateIdle
			m.mu.Unlock()
			return
		}
		m.state = StateBusy
		m.current = ""
		m.mu.Unlock()
		m.process(j)
	}
}

// process runs one analysis: persist the frame, ensure a session, stream
// tokens, record the result. Failures do not propagate; they tear the
// session down so the next round starts from a clean slate.
func (m *Manager) process(j *job) {
	framePath, err := m.persistFrame(j.frame)
	if err != nil {
		m.recordFailure("persist frame: " + err.Error())
		return
	}
	// Best-effort cleanup; the file being gone already is not an error.
	defer os.Remove(framePath)

	sess, err := m.ensureSession(m.ctx)
	if err != nil {
		m.recordFailure(err.Error())
		return
	}

	prompt := j.prompt
	if prompt == "" {
		prompt = m.cfg.DefaultPrompt
	}

	onToken := func(tok string) error {
		m.mu.Lock()
		m.current += tok
		m.mu.Unlock()
		return nil
	}

	start := time.Now()
	res, err := sess.Analyze(m.ctx, framePath, prompt, onToken)
	if err != nil {
		if m.ctx.Err() != nil {
			return // shutting down
		}
		analysisFailures.Inc()
		m.cfg.Logger.Error().Err(err).Msg("analysis failed, reinitializing session")
		m.mu.Lock()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.reinitSession()
		return
	}

	text := strings.TrimSpace(res.Content)
	if text == "" {
		text = noTextSentinel
	}

	m.mu.Lock()
	m.current = text
	m.history = append(m.history, types.AnalysisEntry{Text: text, Prompt: prompt, At: time.Now().Unix()})
	if n := len(m.history) - m.cfg.HistoryLimit; n > 0 {
		m.history = m.history[n:]
	}
	m.analysesTotal++
	m.lastErr = ""
	m.mu.Unlock()
	analysesTotal.Inc()
	m.cfg.Logger.Debug().Dur("dur", time.Since(start)).Int("chars", len(text)).Msg("analysis complete")
}

// persistFrame copies the frame to a stable temporary location for the
// inference runtime to read.
func (m *Manager) persistFrame(frame []byte) (string, error) {
	f, err := os.CreateTemp(m.cfg.TempDir, "visiond-frame-*.img")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(frame); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// reinitSession tears down the current session after a failure. The session
// is in an unknown state, so it is closed and rebuilt lazily on the next
// analysis rather than reused.
func (m *Manager) reinitSession() {
	m.setState(StateReinit)
	m.mu.Lock()
	sess := m.sess
	m.sess = nil
	m.reinitsTotal++
	m.mu.Unlock()
	sessionReinits.Inc()
	if sess != nil {
		if err := sess.Close(); err != nil {
			m.cfg.Logger.Warn().Err(err).Msg("closing failed session")
		}
	}
}

// recordFailure notes a contained failure (setup or filesystem) without
// touching the session.
func (m *Manager) recordFailure(msg string) {
	analysisFailures.Inc()
	m.cfg.Logger.Error().Str("reason", msg).Msg("analysis skipped")
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}
