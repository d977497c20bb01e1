package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/trackdl/internal/io"
	logpkg "github.com/handiism/trackdl/internal/log"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/progress"
	"github.com/handiism/trackdl/internal/stream"
)

// Options configures one batch.
type Options struct {
	// Destination is the output directory. It is created if missing.
	Destination string

	// Parallel is the number of tracks downloaded at once. Values below 1
	// mean 1, which also enables pacing.
	Parallel int

	// Format is the output format.
	Format model.Format

	// Force overwrites existing files and ignores playlist history.
	Force bool
}

func (o Options) normalize() Options {
	if o.Parallel < 1 {
		o.Parallel = 1
	}
	if o.Destination == "" {
		o.Destination = "."
	}
	return o
}

// Manager coordinates track downloads.
type Manager struct {
	provider Provider
	encoder  Encoder
	tagger   TagWriter
	history  History
	reporter progress.Reporter
	logger   *zap.Logger

	timeout    time.Duration
	asciiOnly  bool
	coverArt   bool
	sampleRate int
	channels   int
	sleep      func(ctx context.Context, d time.Duration) error

	receivedBytes   atomic.Int64
	downloadedFiles atomic.Int32
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistory enables playlist history checks and bookkeeping.
func WithHistory(h History) Option {
	return func(m *Manager) { m.history = h }
}

// WithReporter sets the progress display.
func WithReporter(r progress.Reporter) Option {
	return func(m *Manager) {
		if r != nil {
			m.reporter = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = logpkg.OrNop(l) }
}

// WithInactivityTimeout sets how long a stream may stay silent.
func WithInactivityTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithASCIIOnlyFileNames drops non-ASCII characters from file names.
func WithASCIIOnlyFileNames(asciiOnly bool) Option {
	return func(m *Manager) { m.asciiOnly = asciiOnly }
}

// WithCoverArt controls whether cover art is fetched and embedded.
func WithCoverArt(enabled bool) Option {
	return func(m *Manager) { m.coverArt = enabled }
}

// WithPCMLayout sets the sample rate and channel count of provider streams.
func WithPCMLayout(sampleRate, channels int) Option {
	return func(m *Manager) {
		if sampleRate > 0 {
			m.sampleRate = sampleRate
		}
		if channels > 0 {
			m.channels = channels
		}
	}
}

// WithSleep replaces the pacing sleep.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) { m.sleep = fn }
}

// NewManager creates a new download Manager.
func NewManager(provider Provider, encoder Encoder, tagger TagWriter, opts ...Option) *Manager {
	m := &Manager{
		provider:   provider,
		encoder:    encoder,
		tagger:     tagger,
		reporter:   progress.Discard,
		logger:     zap.NewNop(),
		timeout:    DefaultInactivityTimeout,
		coverArt:   true,
		sampleRate: stream.DefaultSampleRate,
		channels:   stream.DefaultChannels,
		sleep:      sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetProgress returns the bytes received and files written so far.
func (m *Manager) GetProgress() (received int64, files int32) {
	return m.receivedBytes.Load(), m.downloadedFiles.Load()
}

// DownloadAll downloads tracks with at most opts.Parallel in flight.
//
// The returned outcomes line up with tracks. A failing track never stops
// the others; the error is non-nil only for ErrStructural (which cancels
// the rest of the batch) or when ctx is cancelled. Downloaded playlist
// tracks are recorded in the history as each one completes.
func (m *Manager) DownloadAll(ctx context.Context, tracks []model.TrackHandle, opts Options) ([]Outcome, error) {
	opts = opts.normalize()

	destination, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("%w: destination %q: %w", ErrStructural, opts.Destination, err)
	}
	if err := ioutils.EnsureDir(destination); err != nil {
		return nil, fmt.Errorf("%w: destination %q: %w", ErrStructural, destination, err)
	}
	opts.Destination = destination

	m.logger.Info("starting batch",
		zap.Int("tracks", len(tracks)),
		zap.Int("parallel", opts.Parallel),
		zap.String("format", opts.Format.String()),
		zap.String("destination", destination),
		zap.Bool("force", opts.Force),
	)

	outcomes := make([]Outcome, len(tracks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for i, h := range tracks {
		i, h := i, h
		g.Go(func() error {
			out, err := m.downloadTrack(gctx, h, opts)
			outcomes[i] = out
			return err
		})
	}

	err = g.Wait()

	summary := Summarize(outcomes)
	m.logger.Info("batch finished",
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("timed_out", summary.TimedOut),
		zap.Int("failed", summary.Failed),
	)

	if err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// downloadTrack runs the pipeline for one track. Only structural errors
// are returned; everything else is reported through the Outcome.
func (m *Manager) downloadTrack(ctx context.Context, h model.TrackHandle, opts Options) (Outcome, error) {
	out := Outcome{Handle: h}
	log := m.logger.With(zap.String("track", h.ID))
	bar := m.reporter.Add(h.ID, 0)

	if err := ctx.Err(); err != nil {
		bar.Finish("Failed! " + h.ID)
		out.Status, out.Err = StatusFailed, err
		return out, nil
	}

	if !opts.Force && m.inHistory(h) {
		log.Info("already downloaded from playlist, skipping", zap.String("playlist", h.Playlist))
		bar.Finish("Skipped " + h.ID)
		out.Status = StatusSkipped
		return out, nil
	}

	meta, err := m.provider.Metadata(ctx, h)
	if err != nil {
		log.Warn("skipping track because metadata could not be loaded", zap.Error(err))
		bar.Finish("Skipped " + h.ID)
		out.Status, out.Err = StatusSkipped, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
		return out, nil
	}
	out.Meta = meta

	t, err := resolveTarget(opts.Destination, meta, opts.Format, opts.Force, m.asciiOnly)
	if err != nil {
		log.Error("cannot build output path", zap.Error(err))
		bar.Finish("Failed! " + h.ID)
		out.Status, out.Err = StatusFailed, err
		return out, err
	}
	out.Title, out.Path = t.Stem, t.Path
	log = log.With(zap.String("file", t.Stem))

	if t.Skip {
		log.Info("file already exists, skipping", zap.String("path", t.Path))
		bar.Finish("Skipped " + t.Stem)
		out.Status = StatusSkipped
		return out, nil
	}

	log.Info("downloading track", zap.String("title", meta.Title))
	bar.SetTotal(meta.ApproxSize)
	bar.SetMessage(t.Stem)

	// Cancelled on return so an abandoned producer stops.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := m.provider.Open(streamCtx, h)
	if err != nil {
		return m.fail(out, bar, log, fmt.Errorf("%w: open: %w", ErrStream, err)), nil
	}

	result := m.bufferStream(streamCtx, events, bar, t.Stem)
	switch result.State {
	case stateTimedOut:
		bar.Finish("Skipped " + t.Stem)
		out.Status, out.Err = StatusTimedOut, result.Err
		return out, nil
	case stateFailed:
		return m.fail(out, bar, log, result.Err), nil
	}
	cancel()

	if err := m.encodeAndTag(ctx, t.Path, meta, result.Samples, opts.Format, bar, t.Stem); err != nil {
		return m.fail(out, bar, log, err), nil
	}
	m.downloadedFiles.Add(1)
	out.Status = StatusDownloaded
	m.recordHistory(h, log)

	if opts.Parallel == 1 {
		delay := pacingDelay(meta, opts.Parallel)
		bar.SetMessage(fmt.Sprintf("Downloaded %s. Delaying next song by %ds", t.Stem, delay/time.Second))
		if err := m.sleep(ctx, delay); err != nil {
			log.Debug("pacing interrupted", zap.Error(err))
		}
		bar.Finish("Completed " + t.Stem)
	} else {
		bar.Finish("Downloaded " + t.Stem)
	}

	log.Info("track downloaded", zap.String("path", t.Path))
	return out, nil
}

func (m *Manager) fail(out Outcome, bar progress.Bar, log *zap.Logger, err error) Outcome {
	name := out.Title
	if name == "" {
		name = out.Handle.ID
	}
	log.Error("failed to download track", zap.Error(err))
	bar.Finish("Failed! " + name)
	out.Status, out.Err = StatusFailed, err
	return out
}

func (m *Manager) inHistory(h model.TrackHandle) bool {
	return m.history != nil && h.Playlist != "" && m.history.Has(h.Playlist, h.ID)
}

// recordHistory appends a downloaded playlist track to the history. The
// store serialises concurrent writers.
func (m *Manager) recordHistory(h model.TrackHandle, log *zap.Logger) {
	if m.history == nil || h.Playlist == "" {
		return
	}
	if err := m.history.Record(h.Playlist, h.ID); err != nil {
		log.Warn("failed to record playlist history", zap.String("playlist", h.Playlist), zap.Error(err))
	}
}

// IsStructural reports whether err aborted a batch.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}
