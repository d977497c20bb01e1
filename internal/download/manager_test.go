package download

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/trackdl/internal/audio"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/stream"
)

type harness struct {
	provider *fakeProvider
	encoder  *fakeEncoder
	tagger   *fakeTagger
	reporter *recordingReporter
	history  *memHistory
	dir      string

	mu     sync.Mutex
	sleeps []time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		provider: newFakeProvider(),
		encoder:  &fakeEncoder{},
		tagger:   &fakeTagger{},
		reporter: newRecordingReporter(),
		history:  newMemHistory(),
		dir:      t.TempDir(),
	}
}

func (h *harness) manager(opts ...Option) *Manager {
	base := []Option{
		WithReporter(h.reporter),
		WithHistory(h.history),
		WithInactivityTimeout(50 * time.Millisecond),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.sleeps = append(h.sleeps, d)
			return nil
		}),
	}
	return NewManager(h.provider, h.encoder, h.tagger, append(base, opts...)...)
}

func (h *harness) options(parallel int) Options {
	return Options{Destination: h.dir, Parallel: parallel, Format: model.FormatMP3}
}

func handles(ids ...string) []model.TrackHandle {
	out := make([]model.TrackHandle, len(ids))
	for i, id := range ids {
		out[i] = model.TrackHandle{ID: id}
	}
	return out
}

func TestDownloadAll_ParallelFailureIsContained(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
		h.provider.track(id, 1000)
	}
	h.provider.update("t2", func(s *script) {
		s.events = []stream.Event{stream.Write(4, 8, []int32{1}), stream.Failure(errors.New("boom"))}
	})

	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1", "t2", "t3", "t4", "t5"), h.options(3))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	summary := Summarize(outcomes)
	if summary.Downloaded != 4 || summary.Failed != 1 {
		t.Errorf("summary = %v, want 4 downloaded and 1 failed", summary)
	}
	if outcomes[1].Status != StatusFailed || !errors.Is(outcomes[1].Err, ErrStream) {
		t.Errorf("t2 outcome = %+v", outcomes[1])
	}
	for i, o := range outcomes {
		if i != 1 && o.Status != StatusDownloaded {
			t.Errorf("outcome %d = %v, want downloaded", i, o.Status)
		}
	}

	if h.reporter.maxLive > 3 {
		t.Errorf("%d pipelines ran at once, limit is 3", h.reporter.maxLive)
	}
	if len(h.sleeps) != 0 {
		t.Errorf("parallel batch was paced: %v", h.sleeps)
	}

	for id, bar := range h.reporter.bars {
		finished := bar.finishedWith()
		if len(finished) != 1 {
			t.Errorf("bar %s finished %d times", id, len(finished))
			continue
		}
		want := "Downloaded Artist - Song " + id
		if id == "t2" {
			want = "Failed! Artist - Song t2"
		}
		if finished[0] != want {
			t.Errorf("bar %s finished with %q, want %q", id, finished[0], want)
		}
	}
}

func TestDownloadAll_SerialPacing(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 3000)
	h.provider.track("t2", 1000)

	var (
		mu    sync.Mutex
		order []string
	)
	h.provider.onMeta = func(id string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "meta "+id)
	}
	m := h.manager(WithSleep(func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, "sleep "+d.String())
		return nil
	}))

	outcomes, err := m.DownloadAll(context.Background(), handles("t1", "t2"), h.options(1))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}
	if s := Summarize(outcomes); s.Downloaded != 2 {
		t.Fatalf("summary = %v", s)
	}

	want := []string{"meta t1", "sleep 600ms", "meta t2", "sleep 200ms"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}

	bar := h.reporter.bar("t1")
	msgs := bar.allMessages()
	if last := msgs[len(msgs)-1]; last != "Downloaded Artist - Song t1. Delaying next song by 0s" {
		t.Errorf("pacing message = %q", last)
	}
	if f := bar.finishedWith(); len(f) != 1 || f[0] != "Completed Artist - Song t1" {
		t.Errorf("finish = %q", f)
	}
}

func TestDownloadAll_ExistingFileSkipsStream(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 1000)
	h.provider.track("t2", 1000, "A", "B", "C", "D")

	existing := filepath.Join(h.dir, "Artist - Song t1.mp3")
	legacy := filepath.Join(h.dir, "A, B, C,  - Song t2.mp3")
	for _, p := range []string{existing, legacy} {
		if err := os.WriteFile(p, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1", "t2"), h.options(2))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	for i, wantPath := range []string{existing, legacy} {
		o := outcomes[i]
		if o.Status != StatusSkipped || o.Path != wantPath {
			t.Errorf("outcome %d = %v at %q, want skipped at %q", i, o.Status, o.Path, wantPath)
		}
		if n := h.provider.openCount(o.Handle.ID); n != 0 {
			t.Errorf("stream of %s opened %d times", o.Handle.ID, n)
		}
	}
	if f := h.reporter.bar("t1").finishedWith(); len(f) != 1 || f[0] != "Skipped Artist - Song t1" {
		t.Errorf("finish = %q", f)
	}
}

func TestDownloadAll_ForceOverwrites(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 1000)

	path := filepath.Join(h.dir, "Artist - Song t1.mp3")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := h.options(2)
	opts.Force = true
	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1"), opts)
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}
	if outcomes[0].Status != StatusDownloaded {
		t.Fatalf("status = %v, want downloaded", outcomes[0].Status)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "mp3:[1 2]" {
		t.Errorf("file = %q, want encoder output", data)
	}

	rec, ok := h.tagger.applied[path]
	if !ok {
		t.Fatal("file not tagged")
	}
	if rec.Title != "Song t1" || rec.Artist != "Artist" || rec.AlbumLength != 5 || string(rec.Cover) != "cover" {
		t.Errorf("tag record = %+v", rec)
	}
}

func TestDownloadAll_TimeoutContinuesBatch(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.provider.track("t2", 0)
	h.provider.update("t1", func(s *script) { s.silent = true })

	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1", "t2"), h.options(1))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	if outcomes[0].Status != StatusTimedOut || !errors.Is(outcomes[0].Err, ErrStreamTimeout) {
		t.Errorf("t1 outcome = %v / %v, want timed out", outcomes[0].Status, outcomes[0].Err)
	}
	if outcomes[1].Status != StatusDownloaded {
		t.Errorf("t2 outcome = %v, want downloaded", outcomes[1].Status)
	}
	if f := h.reporter.bar("t1").finishedWith(); len(f) != 1 || f[0] != "Skipped Artist - Song t1" {
		t.Errorf("finish = %q", f)
	}
}

func TestDownloadAll_MetadataUnavailable(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t2", 0)

	outcomes, err := h.manager().DownloadAll(context.Background(), handles("missing", "t2"), h.options(2))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	if outcomes[0].Status != StatusSkipped || !errors.Is(outcomes[0].Err, ErrMetadataUnavailable) {
		t.Errorf("outcome = %v / %v", outcomes[0].Status, outcomes[0].Err)
	}
	if f := h.reporter.bar("missing").finishedWith(); len(f) != 1 || f[0] != "Skipped missing" {
		t.Errorf("finish = %q", f)
	}
	if outcomes[1].Status != StatusDownloaded {
		t.Errorf("t2 outcome = %v", outcomes[1].Status)
	}
}

func TestDownloadAll_EncodeFailure(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.encoder.err = errors.New("codec exploded")

	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1"), h.options(2))
	if err != nil {
		t.Fatalf("encode failure must not abort the batch: %v", err)
	}
	if outcomes[0].Status != StatusFailed || !errors.Is(outcomes[0].Err, ErrEncodeOrWrite) {
		t.Errorf("outcome = %v / %v", outcomes[0].Status, outcomes[0].Err)
	}
}

// flacFile returns a FLAC stream marker, an empty STREAMINFO block and,
// when withFrame is set, one zeroed audio frame.
func flacFile(withFrame bool) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 34})
	buf.Write(make([]byte, 34))
	if withFrame {
		buf.Write([]byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00})
		buf.Write(make([]byte, 32))
	}
	return buf.Bytes()
}

func TestDownloadAll_EmptyStreamsAndFramelessFLAC(t *testing.T) {
	h := newHarness(t)
	h.provider.track("finished", 0)
	h.provider.track("normal", 0)
	h.provider.track("closed", 0)
	h.provider.update("finished", func(s *script) { s.events = []stream.Event{stream.Finished()} })
	h.provider.update("closed", func(s *script) { s.events = nil })
	h.encoder.output = flacFile(false)

	m := NewManager(h.provider, h.encoder, audio.NewTagger(), WithReporter(h.reporter), WithInactivityTimeout(time.Second))
	opts := h.options(2)
	opts.Format = model.FormatFLAC

	outcomes, err := m.DownloadAll(context.Background(), handles("finished", "normal", "closed"), opts)
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	for _, o := range outcomes {
		if o.Status != StatusFailed || !errors.Is(o.Err, ErrEncodeOrWrite) {
			t.Errorf("%s outcome = %v / %v, want failed encode", o.Handle.ID, o.Status, o.Err)
		}
	}
	if !errors.Is(outcomes[1].Err, audio.ErrNoAudioFrames) {
		t.Errorf("frameless file error = %v, want ErrNoAudioFrames", outcomes[1].Err)
	}
	for _, i := range []int{0, 2} {
		if _, err := os.Stat(outcomes[i].Path); !os.IsNotExist(err) {
			t.Errorf("%s: empty stream must not write a file", outcomes[i].Handle.ID)
		}
	}
	if f := h.reporter.bar("finished").finishedWith(); len(f) != 1 || f[0] != "Failed! Artist - Song finished" {
		t.Errorf("finish = %q", f)
	}

	h.encoder.output = flacFile(true)
	opts.Force = true
	outcomes, err = m.DownloadAll(context.Background(), handles("normal"), opts)
	if err != nil || outcomes[0].Status != StatusDownloaded {
		t.Fatalf("valid FLAC outcome = %v / %v / %v", outcomes[0].Status, outcomes[0].Err, err)
	}
}

func TestDownloadAll_OpenFailure(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.provider.update("t1", func(s *script) { s.openErr = errors.New("403") })

	outcomes, _ := h.manager().DownloadAll(context.Background(), handles("t1"), h.options(2))
	if outcomes[0].Status != StatusFailed || !errors.Is(outcomes[0].Err, ErrStream) {
		t.Errorf("outcome = %v / %v", outcomes[0].Status, outcomes[0].Err)
	}
}

func TestDownloadAll_CoverFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.provider.update("t1", func(s *script) { s.coverErr = errors.New("no cover") })

	outcomes, _ := h.manager().DownloadAll(context.Background(), handles("t1"), h.options(2))
	if outcomes[0].Status != StatusDownloaded {
		t.Fatalf("status = %v", outcomes[0].Status)
	}
	if rec := h.tagger.applied[outcomes[0].Path]; rec.Cover != nil {
		t.Error("cover should be empty")
	}
}

func TestDownloadAll_PlaylistHistory(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.provider.track("t2", 0)
	h.history.Record("pl", "t1")

	tracks := []model.TrackHandle{{ID: "t1", Playlist: "pl"}, {ID: "t2", Playlist: "pl"}}
	outcomes, err := h.manager().DownloadAll(context.Background(), tracks, h.options(2))
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}

	if outcomes[0].Status != StatusSkipped {
		t.Errorf("t1 status = %v, want skipped from history", outcomes[0].Status)
	}
	for _, id := range h.provider.metaLog {
		if id == "t1" {
			t.Error("history hit must not fetch metadata")
		}
	}
	if outcomes[1].Status != StatusDownloaded {
		t.Errorf("t2 status = %v", outcomes[1].Status)
	}
	if !h.history.Has("pl", "t2") {
		t.Error("downloaded playlist track not recorded")
	}

	opts := h.options(2)
	opts.Force = true
	outcomes, _ = h.manager().DownloadAll(context.Background(), tracks[:1], opts)
	if outcomes[0].Status != StatusDownloaded {
		t.Errorf("force must ignore history, got %v", outcomes[0].Status)
	}
}

func TestDownloadAll_HistoryRecordedAsTracksComplete(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)
	h.provider.track("t2", 0)

	var seenBeforeT2 bool
	h.provider.onMeta = func(id string) {
		if id == "t2" {
			seenBeforeT2 = h.history.Has("pl", "t1")
		}
	}

	tracks := []model.TrackHandle{{ID: "t1", Playlist: "pl"}, {ID: "t2", Playlist: "pl"}}
	if _, err := h.manager().DownloadAll(context.Background(), tracks, h.options(1)); err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}
	if !seenBeforeT2 {
		t.Error("t1 should be in the history before t2 starts")
	}
	if !h.history.Has("pl", "t2") {
		t.Error("t2 not recorded")
	}
}

func TestDownloadAll_StructuralFailure(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)

	blocker := filepath.Join(h.dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	opts := h.options(1)
	opts.Destination = filepath.Join(blocker, "sub")
	_, err := h.manager().DownloadAll(context.Background(), handles("t1"), opts)
	if !IsStructural(err) {
		t.Errorf("err = %v, want structural", err)
	}
}

func TestDownloadAll_CreatesDestination(t *testing.T) {
	h := newHarness(t)
	h.provider.track("t1", 0)

	opts := h.options(0)
	opts.Destination = filepath.Join(h.dir, "new", "dir")
	outcomes, err := h.manager().DownloadAll(context.Background(), handles("t1"), opts)
	if err != nil {
		t.Fatalf("DownloadAll returned %v", err)
	}
	if _, err := os.Stat(outcomes[0].Path); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if _, files := h.manager().GetProgress(); files != 0 {
		t.Error("progress counters must be per manager")
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Status: StatusDownloaded},
		{Status: StatusDownloaded},
		{Status: StatusSkipped},
		{Status: StatusTimedOut},
		{Status: StatusFailed},
	}

	s := Summarize(outcomes)
	if s.Downloaded != 2 || s.Skipped != 1 || s.TimedOut != 1 || s.Failed != 1 || s.Total() != 5 {
		t.Errorf("Summarize = %+v", s)
	}
	if s.String() != "2 downloaded, 1 skipped, 1 timed out, 1 failed" {
		t.Errorf("String() = %q", s.String())
	}
}
