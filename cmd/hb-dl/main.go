// Command hb-dl downloads media from the command line with the same core as
// the desktop app.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hbdl/hb-downloader/internal/config"
	"github.com/hbdl/hb-downloader/internal/download"
	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/model"
	"github.com/hbdl/hb-downloader/internal/platform"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// errIncomplete is returned when at least one download did not succeed
var errIncomplete = errors.New("some downloads did not complete")

type options struct {
	configPath string
	urls       []string
	request    model.Request // URL left empty
	dir        string
	parallel   int
	log        bool
	save       bool
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, errIncomplete) {
			fmt.Fprintln(os.Stderr, "hb-dl:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	configPath, err := config.DefaultFileStorePath()
	if err != nil {
		configPath = config.ConfigFileName
	}
	configPath = configPathFromArgs(args, configPath)

	store, err := config.LoadFileStore(configPath)
	if err != nil {
		return err
	}
	settings := config.NewSettings(store)

	opts, err := parseFlags(args, settings, stderr)
	if err != nil {
		return err
	}

	if opts.save {
		settings.SetMediaKind(opts.request.Kind)
		settings.SetQuality(opts.request.Kind, opts.request.Quality)
		settings.SetFormat(opts.request.Kind, opts.request.Format)
		settings.SetNoAudio(opts.request.NoAudio)
		settings.SetDownloadDirectory(opts.dir)
		settings.SetMaxParallelDownloads(opts.parallel)
		if err := store.Save(); err != nil {
			return err
		}
	}

	logOpts := settings.LoggingOptions()
	logOpts.Enabled = logOpts.Enabled || opts.log
	logOpts.Console = stderr
	logOpts.Level = slog.LevelWarn
	if opts.log {
		logOpts.Level = slog.LevelInfo
	}
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := platform.CreateDirectoryIfNotExists(opts.dir); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requests, err := expandRequests(ctx, opts, platform.NewPlaylistExpander(), logger)
	if err != nil {
		return err
	}

	return downloadAll(ctx, requests, opts, download.NewYTDLPEngine(), logger, stderr)
}

// configPathFromArgs finds -config before full parsing, because flag defaults come from the config file
func configPathFromArgs(args []string, fallback string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

func parseFlags(args []string, settings *config.Settings, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("hb-dl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "hb-dl %s\n\nUsage: hb-dl [flags] URL...\n\n", version)
		fs.PrintDefaults()
	}

	defaultKind := settings.GetMediaKind()
	var (
		opts    options
		kind    = fs.String("kind", defaultKind.String(), "media kind: video or audio")
		quality = fs.String("quality", "", "quality (video: best, 1440p ... 144p; audio: 128k ... 320k)")
		format  = fs.String("format", "", "container or codec (video: mp4, mkv, webm; audio: mp3, flac, aac, m4a, opus, ogg, wav)")
		noAudio = fs.Bool("no-audio", settings.GetNoAudio(), "download video without the audio track")
	)
	fs.StringVar(&opts.configPath, "config", "", "config file path")
	fs.StringVar(&opts.dir, "dir", settings.GetDownloadDirectory(), "download directory")
	fs.IntVar(&opts.parallel, "parallel", settings.GetMaxParallelDownloads(), "maximum parallel downloads (1-10)")
	fs.BoolVar(&opts.log, "log", false, "log to stderr and the log file")
	fs.BoolVar(&opts.save, "save", false, "store the given options as defaults")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	mediaKind, err := model.ParseMediaKind(*kind)
	if err != nil {
		return options{}, err
	}
	if *quality == "" {
		*quality = settings.GetQuality(mediaKind)
	}
	if *format == "" {
		*format = settings.GetFormat(mediaKind)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return options{}, errors.New("no URL given")
	}
	if opts.parallel < download.MinParallelDownloads || opts.parallel > download.MaxParallelDownloads {
		return options{}, fmt.Errorf("-parallel must be between %d and %d", download.MinParallelDownloads, download.MaxParallelDownloads)
	}

	opts.urls = fs.Args()
	opts.request = model.Request{
		Kind:    mediaKind,
		Quality: *quality,
		Format:  *format,
		NoAudio: mediaKind == model.MediaKindVideo && *noAudio,
	}
	return opts, nil
}

type playlistExpander interface {
	Expand(ctx context.Context, url string) (*model.Playlist, error)
}

// expandRequests builds one request per URL, replacing playlist URLs with their entries
func expandRequests(ctx context.Context, opts options, expander playlistExpander, logger logging.Logger) ([]model.Request, error) {
	var requests []model.Request
	for _, u := range opts.urls {
		req := opts.request
		req.URL = u
		if !platform.IsPlaylistURL(u) {
			requests = append(requests, req)
			continue
		}

		playlist, err := expander.Expand(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("failed to read playlist %s: %w", u, err)
		}
		logger.Info("playlist expanded", "url", u, "title", playlist.Title, "entries", len(playlist.Entries))
		requests = append(requests, playlist.Requests(req)...)
	}
	return requests, nil
}

// downloadAll runs every request with at most opts.parallel at a time.
// Configuration errors are reported before anything starts.
func downloadAll(ctx context.Context, requests []model.Request, opts options, engine download.Engine, logger logging.Logger, out io.Writer) error {
	tasks := make([]*download.Task, 0, len(requests))
	for _, req := range requests {
		task, err := download.NewTask(req, opts.dir, engine, logger)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	out = &lockedWriter{w: out}
	outcomes := make([]model.Outcome, len(tasks))
	var g errgroup.Group
	g.SetLimit(opts.parallel)
	for i, task := range tasks {
		g.Go(func() error {
			if ctx.Err() != nil {
				task.Cancel()
			}

			listener := newBarListener(out, task.Request().URL)
			relayed := make(chan struct{})
			go func() {
				defer close(relayed)
				download.Relay(task.Events(), listener, nil)
			}()

			if err := task.Start(ctx); err != nil && !errors.Is(err, download.ErrTaskFinished) {
				logger.Warn("task not started", "url", task.Request().URL, "err", err)
			}
			<-relayed
			outcomes[i] = listener.outcome
			return nil
		})
	}
	_ = g.Wait()

	return summarize(outcomes, out)
}

func summarize(outcomes []model.Outcome, out io.Writer) error {
	var succeeded, cancelled, failed int
	for _, o := range outcomes {
		switch o.Kind {
		case model.OutcomeSucceeded:
			succeeded++
		case model.OutcomeCancelled:
			cancelled++
		default:
			failed++
		}
	}
	fmt.Fprintf(out, "%d succeeded, %d cancelled, %d failed\n", succeeded, cancelled, failed)
	if succeeded != len(outcomes) {
		return errIncomplete
	}
	return nil
}
