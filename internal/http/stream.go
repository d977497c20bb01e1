package http

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/handiism/trackdl/internal/stream"
)

const sampleSize = 4

// Stream opens the raw PCM (signed 32-bit little-endian, interleaved) at
// path and delivers it as events on the returned channel.
//
// The initial request is made before Stream returns; its failure is
// returned directly. After that, an interrupted body is resumed with a
// Range request at the received offset. Each resume is announced with a
// Retry event; once the retries are exhausted an Error event ends the
// stream. A clean end of body yields Finished. The channel is closed after
// the terminal event, or as soon as ctx is done.
func (c *Client) Stream(ctx context.Context, path string) (<-chan stream.Event, error) {
	url := c.URL(path)

	resp, err := c.do(ctx, url, 0)
	if err != nil {
		return nil, err
	}

	events := make(chan stream.Event)
	go c.pump(ctx, url, resp, events)
	return events, nil
}

func (c *Client) pump(ctx context.Context, url string, resp *http.Response, events chan<- stream.Event) {
	defer close(events)

	body := resp.Body
	defer func() { body.Close() }()

	total := resp.ContentLength
	var (
		offset  int64
		pending []byte
		attempt int
	)
	buf := make([]byte, c.chunkSize)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			offset += int64(n)

			data := append(pending, buf[:n]...)
			whole := len(data) - len(data)%sampleSize
			samples := decodeSamples(data[:whole])
			pending = append(pending[:0:0], data[whole:]...)

			if !send(ctx, events, stream.Write(offset, total, samples)) {
				return
			}
		}

		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			send(ctx, events, stream.Finished())
			return
		}

		body.Close()
		for {
			attempt++
			if attempt > c.maxRetries {
				send(ctx, events, stream.Failure(fmt.Errorf("stream interrupted at byte %d after %d retries: %w", offset, c.maxRetries, readErr)))
				return
			}
			if !send(ctx, events, stream.Retry(attempt, c.maxRetries)) {
				return
			}
			if err := c.wait(ctx, c.cooldown(attempt)); err != nil {
				return
			}

			resumed, err := c.resume(ctx, url, offset)
			if err != nil {
				readErr = err
				continue
			}
			body = resumed.Body
			break
		}
	}
}

// resume reopens url at offset. Servers that ignore Range answer 200 with
// the whole body; the already received prefix is skipped.
func (c *Client) resume(ctx context.Context, url string, offset int64) (*http.Response, error) {
	resp, err := c.do(ctx, url, offset)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK && offset > 0 {
		if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}

func decodeSamples(data []byte) []int32 {
	samples := make([]int32, len(data)/sampleSize)
	for i := range samples {
		samples[i] = int32(binary.LittleEndian.Uint32(data[i*sampleSize:]))
	}
	return samples
}

func send(ctx context.Context, events chan<- stream.Event, ev stream.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
