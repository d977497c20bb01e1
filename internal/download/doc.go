// Package download runs the per-track download pipeline and the bounded
// scheduler around it.
//
// # Pipeline
//
// For each track handle the Manager:
//
//  1. Skips tracks already recorded in the playlist history
//  2. Fetches metadata and derives the output file name
//  3. Skips tracks whose file (or legacy-named file) already exists
//  4. Buffers the audio stream, giving up after an inactivity timeout
//  5. Encodes, writes and tags the file
//  6. In serial mode, waits a fifth of the track's duration
//
// # Basic Usage
//
//	manager := download.NewManager(provider, encoder, tagger,
//	    download.WithHistory(hist),
//	    download.WithReporter(display),
//	    download.WithLogger(logger),
//	)
//
//	outcomes, err := manager.DownloadAll(ctx, tracks, download.Options{
//	    Destination: "/music",
//	    Parallel:    4,
//	    Format:      model.FormatMP3,
//	})
//	if err != nil {
//	    // only structural failures end up here
//	}
//	fmt.Println(download.Summarize(outcomes))
//
// # Concurrency
//
// At most Options.Parallel pipelines run at once. With Parallel = 1 tracks
// complete in input order, each followed by its pacing delay. A failing
// track never cancels its siblings.
//
// # Progress Tracking
//
// Every track gets one progress bar, finished exactly once with
// "Completed", "Downloaded", "Skipped" or "Failed!" followed by its name.
package download
