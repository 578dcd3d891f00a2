package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"visiond/internal/common/fsutil"
	"visiond/internal/registry"
	"visiond/pkg/types"
)

// Store owns artifact downloads and their in-memory DownloadRecords. It is
// the sole mutator of the record map. Concurrent downloads for different
// filenames proceed independently; concurrent downloads for the same filename
// are collapsed into a single transfer.
type Store struct {
	mu       sync.Mutex
	resolver PathResolver
	client   *http.Client
	log      zerolog.Logger
	records  map[string]*types.DownloadRecord
	inflight map[string]*flight
}

// flight is one in-progress transfer. Followers wait on done and share the
// leader's result.
type flight struct {
	done chan struct{}
	path string
	err  error
}

// Config encapsulates Store construction parameters.
type Config struct {
	Resolver PathResolver
	// Client used for transfers. Defaults to http.DefaultClient; model
	// files are large, so no client-level timeout is applied by default.
	Client *http.Client
	Logger zerolog.Logger
}

// New constructs a Store from Config.
func New(cfg Config) *Store {
	c := cfg.Client
	if c == nil {
		c = http.DefaultClient
	}
	return &Store{
		resolver: cfg.Resolver,
		client:   c,
		log:      cfg.Logger,
		records:  make(map[string]*types.DownloadRecord),
		inflight: make(map[string]*flight),
	}
}

// Download fetches url into the storage location for filename and returns the
// resolved path. When the artifact already exists with non-zero size the call
// short-circuits without a network transfer, so repeated calls are
// idempotent. Failures are recorded on the artifact's DownloadRecord and
// returned; the caller decides whether to retry.
func (s *Store) Download(ctx context.Context, url, filename string) (string, error) {
	if err := checkFilename(filename); err != nil {
		return "", err
	}

	s.mu.Lock()
	if fl, ok := s.inflight[filename]; ok {
		// Attach to the transfer already running for this filename.
		s.mu.Unlock()
		select {
		case <-fl.done:
			return fl.path, fl.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	fl := &flight{done: make(chan struct{})}
	s.inflight[filename] = fl
	s.mu.Unlock()

	path, err := s.download(ctx, url, filename)
	fl.path, fl.err = path, err

	s.mu.Lock()
	delete(s.inflight, filename)
	s.mu.Unlock()
	close(fl.done)
	return path, err
}

func (s *Store) download(ctx context.Context, url, filename string) (string, error) {
	path, err := s.resolver.Resolve(filename)
	if err != nil {
		s.setFailed(filename, err.Error())
		return "", fmt.Errorf("resolve storage path: %w", err)
	}

	if fsutil.ArtifactPresent(path) {
		s.setComplete(filename)
		s.log.Debug().Str("filename", filename).Str("path", path).Msg("artifact already present")
		return path, nil
	}

	s.setRecord(filename, types.DownloadRecord{State: types.DownloadDownloading, Progress: 0})
	downloadsStarted.Inc()
	s.log.Info().Str("filename", filename).Str("url", url).Msg("download start")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", s.fail(filename, fmt.Sprintf("build request: %v", err))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", s.fail(filename, fmt.Sprintf("fetch: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", s.fail(filename, "unexpected status: "+resp.Status)
	}

	// Stream into a temp file next to the target; rename into place only on
	// a fully completed transfer so a crash never leaves a partial artifact
	// under the real name.
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return "", s.fail(filename, fmt.Sprintf("create file: %v", err))
	}

	pw := &progressWriter{
		total:  resp.ContentLength,
		report: func(frac float64) { s.setProgress(filename, frac) },
	}
	written, err := io.Copy(out, io.TeeReader(resp.Body, pw))
	cerr := out.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", s.fail(filename, fmt.Sprintf("transfer: %v", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", s.fail(filename, fmt.Sprintf("finalize: %v", err))
	}

	s.setComplete(filename)
	downloadsCompleted.Inc()
	downloadBytes.Add(float64(written))
	s.log.Info().Str("filename", filename).Int64("bytes", written).Msg("download complete")
	return path, nil
}

// Lookup resolves the path for filename and reports whether a usable
// artifact is stored there. It never triggers a download.
func (s *Store) Lookup(filename string) (string, bool) {
	if err := checkFilename(filename); err != nil {
		return "", false
	}
	path, err := s.resolver.Resolve(filename)
	if err != nil {
		return "", false
	}
	return path, fsutil.ArtifactPresent(path)
}

// Delete removes the stored artifact and clears its record. It reports
// whether a deletion actually occurred.
func (s *Store) Delete(filename string) (bool, error) {
	if err := checkFilename(filename); err != nil {
		return false, err
	}
	path, err := s.resolver.Resolve(filename)
	if err != nil {
		return false, fmt.Errorf("resolve storage path: %w", err)
	}
	s.ClearRecord(filename)
	if !fsutil.PathExists(path) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("remove artifact: %w", err)
	}
	s.log.Info().Str("filename", filename).Msg("artifact deleted")
	return true, nil
}

// ClearRecord drops only the in-memory DownloadRecord for filename,
// independent of the underlying file.
func (s *Store) ClearRecord(filename string) {
	s.mu.Lock()
	delete(s.records, filename)
	s.mu.Unlock()
}

// Progress returns a snapshot of all DownloadRecords keyed by filename.
func (s *Store) Progress() map[string]types.DownloadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]types.DownloadRecord, len(s.records))
	for k, v := range s.records {
		out[k] = *v
	}
	return out
}

// Record returns the DownloadRecord for one filename.
func (s *Store) Record(filename string) (types.DownloadRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[filename]
	if !ok {
		return types.DownloadRecord{}, false
	}
	return *r, true
}

// Dir exposes the resolved storage directory.
func (s *Store) Dir() (string, error) { return s.resolver.Dir() }

// Models lists the usable artifacts currently stored.
func (s *Store) Models() ([]types.Artifact, error) {
	dir, err := s.resolver.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	return registry.LoadDir(dir)
}

func (s *Store) setRecord(filename string, rec types.DownloadRecord) {
	s.mu.Lock()
	s.records[filename] = &rec
	s.mu.Unlock()
}

// setProgress updates the progress fraction for a downloading record.
// Reported progress is clamped to [0,1] and never decreases.
func (s *Store) setProgress(filename string, frac float64) {
	if frac < 0 || frac != frac { // negative or NaN: unknown length, keep best effort
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	s.mu.Lock()
	if r, ok := s.records[filename]; ok && r.State == types.DownloadDownloading && frac > r.Progress {
		r.Progress = frac
	}
	s.mu.Unlock()
}

func (s *Store) setComplete(filename string) {
	s.setRecord(filename, types.DownloadRecord{State: types.DownloadComplete, Progress: 1})
}

func (s *Store) setFailed(filename, msg string) {
	s.setRecord(filename, types.DownloadRecord{State: types.DownloadFailed, Error: msg})
}

// fail marks the record failed and returns the typed error in one step.
func (s *Store) fail(filename, msg string) error {
	s.setFailed(filename, msg)
	downloadsFailed.Inc()
	s.log.Error().Str("filename", filename).Str("reason", msg).Msg("download failed")
	return ErrDownloadFailed(filename, msg)
}

func checkFilename(filename string) error {
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return badFilenameError{filename: filename}
	}
	return nil
}

// progressWriter reports cumulative transfer progress as a fraction of the
// expected total. With an unknown total it reports nothing; the record jumps
// to 1.0 on completion.
type progressWriter struct {
	total  int64
	got    int64
	report func(frac float64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.got += int64(n)
	if pw.total > 0 {
		pw.report(float64(pw.got) / float64(pw.total))
	}
	return n, nil
}
