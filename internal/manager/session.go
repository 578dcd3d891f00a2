package manager

import "context"

// ensureSession returns the live inference session, building it on first use
// or after a teardown: fetch the model artifact through the store (idempotent
// when cached), then load it via the adapter.
func (m *Manager) ensureSession(ctx context.Context) (InferSession, error) {
	m.mu.Lock()
	sess := m.sess
	m.mu.Unlock()
	if sess != nil {
		return sess, nil
	}

	path, err := m.cfg.Store.Download(ctx, m.cfg.ModelURL, m.cfg.ModelFile)
	if err != nil {
		return nil, ErrSessionInit("fetch model: " + err.Error())
	}

	params := InferParams{MaxTokens: m.cfg.MaxTokens}
	s, err := m.cfg.Adapter.Start(path, params)
	if err != nil {
		if IsDependencyUnavailable(err) {
			return nil, err
		}
		return nil, ErrSessionInit("load model: " + err.Error())
	}

	m.mu.Lock()
	m.sess = s
	m.modelPath = path
	m.lastErr = ""
	m.mu.Unlock()
	m.cfg.Logger.Info().Str("model", path).Msg("inference session ready")
	return s, nil
}

// EnsureSession eagerly initializes the inference session, typically called
// once at startup so the first capture does not pay the model load.
func (m *Manager) EnsureSession(ctx context.Context) error {
	_, err := m.ensureSession(ctx)
	return err
}
