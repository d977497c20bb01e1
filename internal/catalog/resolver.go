package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/handiism/trackdl/internal/catalog/dto"
	logpkg "github.com/handiism/trackdl/internal/log"
	"github.com/handiism/trackdl/internal/model"
)

// ErrNoTracksFound is returned when none of the references yielded a track.
var ErrNoTracksFound = errors.New("no tracks found")

// Resolution is the outcome of resolving a set of references.
type Resolution struct {
	// Tracks lists every track to download, deduplicated, in input order.
	Tracks []model.TrackHandle

	// Collections holds the albums and playlists that were expanded.
	Collections []*model.Collection
}

// Resolver expands references into track handles.
//
// Track references map to one handle. Album and playlist references are
// fetched from the service and expanded to their member tracks; playlist
// members keep the playlist id for history bookkeeping.
//
// Example usage:
//
//	resolver := NewResolver(client, logger)
//	res, err := resolver.Resolve(ctx, []string{"svc:playlist:37i9dQ", "https://open.example.com/track/4uLU6h"})
type Resolver struct {
	api    API
	logger *zap.Logger
}

// NewResolver creates a Resolver backed by api.
func NewResolver(api API, logger *zap.Logger) *Resolver {
	return &Resolver{api: api, logger: logpkg.OrNop(logger)}
}

// Resolve parses and expands refs. References that cannot be parsed or
// fetched are skipped; their errors are joined into the returned error
// alongside a usable Resolution. Duplicate handles are filtered out.
//
// Returns ErrNoTracksFound (joined with the individual failures) when
// nothing resolved.
func (r *Resolver) Resolve(ctx context.Context, refs []string) (*Resolution, error) {
	res := &Resolution{}
	seen := make(map[model.TrackHandle]struct{})
	var errs []error

	add := func(h model.TrackHandle) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		res.Tracks = append(res.Tracks, h)
	}

	for _, raw := range refs {
		ref, err := ParseReference(raw)
		if err != nil {
			r.logger.Warn("skipping reference", zap.String("reference", raw), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		if ref.Kind == model.KindTrack {
			add(model.TrackHandle{ID: ref.ID})
			continue
		}

		c, err := r.collection(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("failed to fetch collection", zap.String("reference", raw), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", raw, err))
			continue
		}

		r.logger.Debug("expanded collection",
			zap.String("kind", c.Kind.String()),
			zap.String("id", c.ID),
			zap.Int("tracks", len(c.Tracks)),
		)
		res.Collections = append(res.Collections, c)
		for _, h := range c.Tracks {
			add(h)
		}
	}

	if len(res.Tracks) == 0 {
		errs = append(errs, ErrNoTracksFound)
	}
	return res, errors.Join(errs...)
}

func (r *Resolver) collection(ctx context.Context, ref Reference) (*model.Collection, error) {
	path := fmt.Sprintf("/v1/%ss/%s", ref.Kind, url.PathEscape(ref.ID))

	var jc dto.JSONCollection
	if err := r.api.GetJSON(ctx, path, &jc); err != nil {
		return nil, err
	}
	return jc.ToCollection(ref.Kind, ref.ID), nil
}
