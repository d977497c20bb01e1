package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/handiism/trackdl/internal/catalog/dto"
	ioutils "github.com/handiism/trackdl/internal/io"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/stream"
)

// API is the subset of the HTTP client the catalog needs.
type API interface {
	GetJSON(ctx context.Context, path string, v any) error
	Stream(ctx context.Context, path string) (<-chan stream.Event, error)
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// Service provides track metadata, audio streams and cover art from the
// remote service.
type Service struct {
	api    API
	images *ioutils.ImageService
}

// NewService creates a Service. images may be nil, in which case covers
// are returned as downloaded.
func NewService(api API, images *ioutils.ImageService) *Service {
	return &Service{api: api, images: images}
}

// Metadata fetches the descriptive data of a track.
func (s *Service) Metadata(ctx context.Context, h model.TrackHandle) (*model.TrackMetadata, error) {
	var jt dto.JSONTrack
	if err := s.api.GetJSON(ctx, trackPath(h.ID), &jt); err != nil {
		return nil, err
	}
	return jt.ToMetadata(h.ID), nil
}

// Open starts the audio stream of a track.
func (s *Service) Open(ctx context.Context, h model.TrackHandle) (<-chan stream.Event, error) {
	return s.api.Stream(ctx, trackPath(h.ID)+"/audio")
}

// Cover downloads the album cover of meta and prepares it for embedding.
// A track without cover yields nil, nil.
func (s *Service) Cover(ctx context.Context, meta *model.TrackMetadata) ([]byte, error) {
	if meta.Album.CoverURL == "" {
		return nil, nil
	}

	data, err := s.api.DownloadBytes(ctx, meta.Album.CoverURL)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}
	if s.images == nil {
		return data, nil
	}

	cover, err := s.images.PrepareCover(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("prepare cover: %w", err)
	}
	return cover, nil
}

func trackPath(id string) string {
	return "/v1/tracks/" + url.PathEscape(id)
}
