package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/handiism/trackdl/internal/audio"
	"github.com/handiism/trackdl/internal/catalog"
	"github.com/handiism/trackdl/internal/config"
	"github.com/handiism/trackdl/internal/download"
	"github.com/handiism/trackdl/internal/history"
	apiclient "github.com/handiism/trackdl/internal/http"
	ioutils "github.com/handiism/trackdl/internal/io"
	"github.com/handiism/trackdl/internal/lastrun"
	logpkg "github.com/handiism/trackdl/internal/log"
	"github.com/handiism/trackdl/internal/model"
	"github.com/handiism/trackdl/internal/progress"
	"github.com/handiism/trackdl/internal/tui"
)

func main() {
	app := &cli.App{
		Name:      "trackdl",
		Usage:     "Download tracks, albums and playlists as tagged MP3 or FLAC files",
		ArgsUsage: "<reference>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "destination",
				Aliases: []string{"d"},
				Usage:   "Output directory (created if missing)",
			},
			&cli.IntFlag{
				Name:    "turbo",
				Aliases: []string{"t", "parallel"},
				Usage:   "Number of tracks downloaded at once",
				Value:   1,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: mp3 or flac",
				Value:   "mp3",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"F"},
				Usage:   "Download even if the file already exists",
			},
			&cli.BoolFlag{
				Name:    "reset",
				Aliases: []string{"r"},
				Usage:   "Reset last run cache",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to settings file (.json, .yaml)",
				Value: config.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print one line per update instead of the interactive display",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
			&cli.BoolFlag{
				Name:  "playlist",
				Usage: "Write a playlist file for every album and playlist",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error loading config: %v", err), 1)
	}
	applyFlags(c, settings)

	format, err := settings.AudioFormat()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	plain := c.Bool("plain") || !isatty.IsTerminal(os.Stdout.Fd())

	logger, closeLog := openLogger(settings, plain, c.Bool("verbose"))
	defer closeLog()
	logger, runID := logpkg.WithRun(logger)

	refs, err := references(c)
	if err != nil {
		return err
	}
	logger.Info("starting run", zap.String("run_id", runID), zap.Strings("references", refs))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := apiclient.NewClient(settings.ServiceURL,
		apiclient.WithToken(settings.Token),
		apiclient.WithRetry(settings.DownloadMaxRetries, settings.RetryCooldown),
	)

	res, err := catalog.NewResolver(client, logger).Resolve(ctx, refs)
	if err != nil {
		if res == nil || len(res.Tracks) == 0 {
			return cli.Exit(fmt.Sprintf("Error resolving references: %v", err), 1)
		}
		fmt.Fprintf(os.Stderr, "Some references could not be resolved: %v\n", err)
	}

	var images *ioutils.ImageService
	if settings.SaveCoverArtInTags {
		images = ioutils.NewImageService(settings.CoverArtMaxSize)
	}

	var reporter progress.Reporter
	var display *tui.Display
	if plain {
		reporter = progress.NewPlain(os.Stdout)
	} else {
		display = tui.NewDisplay("trackdl", cancel)
		display.Start()
		reporter = display
	}

	manager := download.NewManager(
		catalog.NewService(client, images),
		audio.NewFFmpegEncoder(settings.FFmpegPath),
		audio.NewTagger(),
		download.WithHistory(history.Load(settings.HistoryPath)),
		download.WithReporter(reporter),
		download.WithLogger(logger),
		download.WithInactivityTimeout(settings.InactivityTimeout.Std()),
		download.WithASCIIOnlyFileNames(settings.ASCIIOnlyFileNames),
		download.WithCoverArt(settings.SaveCoverArtInTags),
		download.WithPCMLayout(settings.SampleRate, settings.Channels),
	)

	outcomes, err := manager.DownloadAll(ctx, res.Tracks, download.Options{
		Destination: settings.Destination,
		Parallel:    settings.Parallel,
		Format:      format,
		Force:       c.Bool("force"),
	})

	if display != nil {
		if derr := display.Stop(); derr != nil {
			logger.Warn("display stopped with error", zap.Error(derr))
		}
	}

	if download.IsStructural(err) {
		return cli.Exit(fmt.Sprintf("Error during download: %v", err), 1)
	}

	if settings.CreatePlaylist {
		writePlaylists(context.WithoutCancel(ctx), settings, res.Collections, outcomes, logger)
	}

	received, files := manager.GetProgress()
	summary := download.Summarize(outcomes)
	fmt.Println()
	fmt.Printf("✨ Done! %s (%d files, %.2f MB)\n", summary, files, float64(received)/1024/1024)

	if ctx.Err() != nil {
		fmt.Println("Download cancelled.")
		return cli.Exit("", 130)
	}
	return nil
}

// applyFlags lets command line flags override the settings file.
func applyFlags(c *cli.Context, settings *config.Settings) {
	if c.IsSet("destination") {
		settings.Destination = c.String("destination")
	}
	if c.IsSet("turbo") {
		settings.Parallel = c.Int("turbo")
	}
	if c.IsSet("format") {
		settings.Format = c.String("format")
	}
	if c.Bool("playlist") {
		settings.CreatePlaylist = true
	}
}

// openLogger returns the run logger and a function closing it. Logs go to
// stderr in plain verbose mode and to the log file otherwise.
func openLogger(settings *config.Settings, plain, verbose bool) (*zap.Logger, func()) {
	level := logpkg.Level(verbose)
	if plain && verbose {
		logger := logpkg.New(os.Stderr, level)
		return logger, func() { _ = logger.Sync() }
	}

	logger, closeFn, err := logpkg.NewFile(settings.LogPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file %s: %v\n", settings.LogPath, err)
		return zap.NewNop(), func() {}
	}
	return logger, func() { _ = closeFn() }
}

// references collects the references of this run: the arguments, else the
// last run cache, else an interactive prompt. The result is stored as the
// next last run cache.
func references(c *cli.Context) ([]string, error) {
	cachePath := lastrun.DefaultPath

	if c.Bool("reset") {
		existed := ioutils.Exists(cachePath)
		if err := lastrun.Reset(cachePath); err != nil {
			return nil, cli.Exit(fmt.Sprintf("Error resetting last run cache: %v", err), 1)
		}
		if existed {
			fmt.Printf("Reset mode! Erased last run cache file: %s\n", cachePath)
		}
	}

	var refs []string
	for _, arg := range c.Args().Slice() {
		refs = append(refs, catalog.SplitReferences(arg)...)
	}

	if len(refs) == 0 && !c.Bool("reset") {
		cached, corrupted, err := lastrun.Recall(cachePath)
		if err != nil && !corrupted {
			return nil, cli.Exit(fmt.Sprintf("Error reading last run cache: %v", err), 1)
		}
		if corrupted {
			fmt.Fprintf(os.Stderr, "⚠️  Last run cache file corrupted. Erasing: %s\n", cachePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Could not erase %s: %v\n", cachePath, err)
			}
		}
		if len(cached) > 0 {
			fmt.Println("Tracks not provided.")
			fmt.Println("Found last run cache. Will run in folder sync-mode with same tracks as last time:")
			fmt.Println(strings.Join(cached, ", "))
			fmt.Println("(Tip: Run with flag -r to clear folder sync-mode state or specify a different track via command argument.)")
			fmt.Println()
			refs = cached
		}
	}

	if len(refs) == 0 {
		answer, err := prompt()
		if err != nil {
			return nil, cli.Exit(err.Error(), 1)
		}
		refs = catalog.SplitReferences(answer)
		if len(refs) == 0 {
			return nil, cli.Exit("No tracks provided", 1)
		}
	}

	if err := lastrun.Store(cachePath, refs); err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error writing last run cache: %v", err), 1)
	}
	return refs, nil
}

// prompt asks for a reference, with the interactive prompt on a terminal
// and a plain line read otherwise.
func prompt() (string, error) {
	const label = "Enter a track, album or playlist URL or URI:"
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return tui.Prompt(label, "scheme:playlist:37i9dQZF1DX")
	}

	fmt.Print(label + " ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func writePlaylists(ctx context.Context, settings *config.Settings, collections []*model.Collection, outcomes []download.Outcome, logger *zap.Logger) {
	writer := download.NewPlaylistWriter(settings.Playlist(), settings.M3UExtended, settings.ASCIIOnlyFileNames)
	for _, col := range collections {
		path, err := writer.Write(ctx, settings.Destination, col, outcomes)
		if err != nil {
			logger.Warn("failed to write playlist", zap.String("collection", col.ID), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Failed to write playlist %s: %v\n", col.Name, err)
			continue
		}
		if path != "" {
			logger.Info("playlist written", zap.String("collection", col.ID), zap.String("path", path))
			fmt.Printf("Playlist written: %s\n", path)
		}
	}
}
