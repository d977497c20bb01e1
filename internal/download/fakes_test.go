package download

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/handiism/trackdl/internal/audio"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/progress"
	"github.com/handiism/trackdl/internal/stream"
)

// script is how the fake provider behaves for one track.
type script struct {
	meta     *model.TrackMetadata
	metaErr  error
	openErr  error
	events   []stream.Event
	silent   bool
	coverErr error
}

type fakeProvider struct {
	mu      sync.Mutex
	scripts map[string]script
	opened  map[string]int
	metaLog []string
	onMeta  func(id string)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{scripts: make(map[string]script), opened: make(map[string]int)}
}

// track registers a track that streams samples and finishes.
func (p *fakeProvider) track(id string, durationMs int64, artists ...string) {
	if len(artists) == 0 {
		artists = []string{"Artist"}
	}
	p.scripts[id] = script{
		meta: &model.TrackMetadata{
			ID:         id,
			Title:      "Song " + id,
			Artists:    artists,
			Album:      model.AlbumInfo{Title: "Album", TrackCount: 5, CoverURL: "cover"},
			DurationMs: durationMs,
			ApproxSize: 8,
			Number:     1,
		},
		events: []stream.Event{
			stream.Write(4, 8, []int32{1}),
			stream.Write(8, 8, []int32{2}),
			stream.Finished(),
		},
	}
}

func (p *fakeProvider) Metadata(ctx context.Context, h model.TrackHandle) (*model.TrackMetadata, error) {
	p.mu.Lock()
	p.metaLog = append(p.metaLog, h.ID)
	onMeta := p.onMeta
	s, ok := p.scripts[h.ID]
	p.mu.Unlock()

	if onMeta != nil {
		onMeta(h.ID)
	}
	if !ok {
		return nil, errors.New("unknown track")
	}
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	return s.meta, nil
}

func (p *fakeProvider) Open(ctx context.Context, h model.TrackHandle) (<-chan stream.Event, error) {
	p.mu.Lock()
	p.opened[h.ID]++
	s := p.scripts[h.ID]
	p.mu.Unlock()

	if s.openErr != nil {
		return nil, s.openErr
	}

	ch := make(chan stream.Event)
	go func() {
		defer close(ch)

		if s.silent {
			<-ctx.Done()
			return
		}
		for _, ev := range s.events {
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (p *fakeProvider) Cover(ctx context.Context, meta *model.TrackMetadata) ([]byte, error) {
	p.mu.Lock()
	s := p.scripts[meta.ID]
	p.mu.Unlock()

	if s.coverErr != nil {
		return nil, s.coverErr
	}
	return []byte("cover"), nil
}

func (p *fakeProvider) openCount(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened[id]
}

type fakeEncoder struct {
	err error
	// output replaces the default "format:[samples]" bytes when set.
	output []byte
}

func (e *fakeEncoder) Encode(ctx context.Context, samples stream.Samples, format model.Format) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.output != nil {
		return e.output, nil
	}
	return []byte(fmt.Sprintf("%s:%v", format, samples.Samples)), nil
}

type fakeTagger struct {
	mu      sync.Mutex
	applied map[string]audio.TagRecord
}

func (t *fakeTagger) Apply(path string, rec audio.TagRecord, format model.Format) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.applied == nil {
		t.applied = make(map[string]audio.TagRecord)
	}
	t.applied[path] = rec
	return nil
}

type memHistory struct {
	mu      sync.Mutex
	entries map[string]bool
}

func newMemHistory() *memHistory {
	return &memHistory{entries: make(map[string]bool)}
}

func (h *memHistory) Has(playlist, track string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[playlist+"/"+track]
}

func (h *memHistory) Record(playlist, track string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[playlist+"/"+track] = true
	return nil
}

type recordingBar struct {
	mu       sync.Mutex
	reporter *recordingReporter
	label    string
	total    int64
	position int64
	messages []string
	finished []string
}

func (b *recordingBar) SetTotal(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total = total
}

func (b *recordingBar) SetPosition(pos int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.position = pos
}

func (b *recordingBar) SetMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBar) Finish(msg string) {
	b.mu.Lock()
	b.finished = append(b.finished, msg)
	b.mu.Unlock()

	b.reporter.mu.Lock()
	b.reporter.live--
	b.reporter.mu.Unlock()
}

func (b *recordingBar) finishedWith() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.finished...)
}

func (b *recordingBar) allMessages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

// recordingReporter keeps every bar and tracks how many are unfinished,
// which is the number of pipelines in flight.
type recordingReporter struct {
	mu      sync.Mutex
	bars    map[string]*recordingBar
	live    int
	maxLive int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{bars: make(map[string]*recordingBar)}
}

func (r *recordingReporter) Add(label string, total int64) progress.Bar {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := &recordingBar{reporter: r, label: label, total: total}
	r.bars[label] = b
	r.live++
	if r.live > r.maxLive {
		r.maxLive = r.live
	}
	return b
}

func (r *recordingReporter) bar(label string) *recordingBar {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bars[label]
}

func (p *fakeProvider) update(id string, fn func(s *script)) {
	s := p.scripts[id]
	fn(&s)
	p.scripts[id] = s
}
