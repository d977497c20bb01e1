package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/trackdl/internal/progress"
	"github.com/handiism/trackdl/internal/stream"
)

// DefaultInactivityTimeout is how long a stream may stay silent.
const DefaultInactivityTimeout = 30 * time.Second

type bufferState int

const (
	stateAwaiting bufferState = iota
	stateReceiving
	stateRetrying
	stateCompleted
	stateTimedOut
	stateFailed
)

func (s bufferState) String() string {
	switch s {
	case stateAwaiting:
		return "awaiting"
	case stateReceiving:
		return "receiving"
	case stateRetrying:
		return "retrying"
	case stateCompleted:
		return "completed"
	case stateTimedOut:
		return "timed out"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// bufferResult is the terminal state of one stream. Samples is only
// populated for stateCompleted.
type bufferResult struct {
	State   bufferState
	Samples stream.Samples
	Err     error
}

// bufferStream drains events into a sample buffer.
//
// Each wait for the next event is bounded by m.timeout; expiry ends in
// stateTimedOut. A closed channel counts as Finished.
func (m *Manager) bufferStream(ctx context.Context, events <-chan stream.Event, bar progress.Bar, stem string) bufferResult {
	samples := stream.Samples{SampleRate: m.sampleRate, Channels: m.channels}
	state := stateAwaiting
	var received int64

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return bufferResult{State: stateFailed, Err: ctx.Err()}

		case <-timer.C:
			m.logger.Warn("stream inactive, giving up",
				zap.String("file", stem),
				zap.String("state", state.String()),
				zap.Duration("timeout", m.timeout),
			)
			return bufferResult{State: stateTimedOut, Err: fmt.Errorf("%w after %s", ErrStreamTimeout, m.timeout)}

		case ev, ok := <-events:
			if !ok {
				return bufferResult{State: stateCompleted, Samples: samples}
			}

			switch ev.Kind {
			case stream.KindWrite:
				state = stateReceiving
				samples.Samples = append(samples.Samples, ev.Samples...)
				if ev.Total > 0 {
					bar.SetTotal(ev.Total)
				}
				bar.SetPosition(ev.Bytes)
				if ev.Bytes > received {
					m.receivedBytes.Add(ev.Bytes - received)
					received = ev.Bytes
				}

			case stream.KindRetry:
				state = stateRetrying
				m.logger.Warn("provider retrying",
					zap.String("file", stem),
					zap.Int("attempt", ev.Attempt),
					zap.Int("max_attempts", ev.MaxAttempts),
				)
				bar.SetMessage(fmt.Sprintf("Retrying (%d/%d) %s", ev.Attempt, ev.MaxAttempts, stem))

			case stream.KindError:
				cause := ev.Err
				if cause == nil {
					cause = errors.New("provider reported an error")
				}
				return bufferResult{State: stateFailed, Err: fmt.Errorf("%w: %w", ErrStream, cause)}

			case stream.KindFinished:
				return bufferResult{State: stateCompleted, Samples: samples}

			default:
				return bufferResult{State: stateFailed, Err: fmt.Errorf("%w: unexpected %s event", ErrStream, ev.Kind)}
			}

			timer.Reset(m.timeout)
		}
	}
}
