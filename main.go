package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/hbdl/hb-downloader/internal/config"
	"github.com/hbdl/hb-downloader/internal/download"
	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/platform"
	"github.com/hbdl/hb-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.hbdl.hb-downloader"
	AppName = "HB Downloader"
)

func main() {
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewDarkTheme())

	settings := config.NewSettings(myApp.Preferences())

	logOpts := settings.LoggingOptions()
	logOpts.Console = os.Stdout
	logger, closer, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		logger = logging.Discard()
	} else {
		defer closer.Close()
	}
	logger.Info("starting", "app", AppName, "version", version)

	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		logger.Warn("failed to ensure downloads dir", "dir", downloadsDir, "err", err)
	}

	downloadSvc := download.NewService(download.NewYTDLPEngine(), downloadsDir, settings.GetMaxParallelDownloads(), logger)

	myWindow := myApp.NewWindow(AppName)
	if icon, err := ui.LoadAppIcon(); err == nil {
		myWindow.SetIcon(icon)
	}
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	ui.NewRootUI(myWindow, settings, downloadSvc, platform.NewPlaylistExpander(), logger)

	myWindow.ShowAndRun()
}
