package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/hbdl/hb-downloader/internal/config"
	"github.com/hbdl/hb-downloader/internal/download"
	"github.com/hbdl/hb-downloader/internal/logging"
	"github.com/hbdl/hb-downloader/internal/model"
	"github.com/hbdl/hb-downloader/internal/platform"
)

// PlaylistExpander resolves a playlist URL into its entries
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) (*model.Playlist, error)
}

// RootUI is the download form: one URL, one set of options, one progress bar.
// A playlist URL becomes a batch of tasks that share the progress bar.
type RootUI struct {
	window       fyne.Window
	downloadSvc  download.Downloader
	expander     PlaylistExpander
	settings     *config.Settings
	localization *Localization
	logger       logging.Logger

	// dispatch moves work onto the UI goroutine
	dispatch func(func())
	reveal   func(path string) error

	urlEntry     *widget.Entry
	kindSelect   *widget.Select
	noAudioCheck *widget.Check
	qualityLabel *widget.Label
	formatLabel  *widget.Label
	qualitySel   *widget.Select
	formatSel    *widget.Select
	progress     *widget.ProgressBar
	actionBtn    *widget.Button

	// state below is only touched on the UI goroutine
	kind         model.MediaKind
	batch        map[string]*model.DownloadTask
	batchOrder   []string
	reported     map[string]bool
	running      bool
	cancelling   bool
	generation   int
	progressText string
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, settings *config.Settings, downloadSvc download.Downloader, expander PlaylistExpander, logger logging.Logger) *RootUI {
	if logger == nil {
		logger = logging.Discard()
	}

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		downloadSvc:  downloadSvc,
		expander:     expander,
		settings:     settings,
		localization: localization,
		logger:       logger,
		dispatch:     fyne.Do,
		reveal:       platform.OpenFileInManager,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	// Service updates arrive in order on service goroutines; fyne.Do keeps that order
	ui.downloadSvc.SetUpdateCallback(func(task *model.DownloadTask) {
		ui.dispatch(func() { ui.onTaskUpdate(task) })
	})

	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnChanged = func(string) { ui.updateActionState() }
	ui.urlEntry.OnSubmitted = func(string) {
		if !ui.running {
			ui.onActionClick()
		}
	}

	ui.kindSelect = widget.NewSelect(nil, func(string) { ui.onKindChanged() })

	ui.noAudioCheck = widget.NewCheck("", nil)
	ui.noAudioCheck.Hide()

	ui.qualityLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	ui.formatLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	ui.qualitySel = widget.NewSelect(nil, nil)
	ui.formatSel = widget.NewSelect(nil, nil)

	ui.progress = widget.NewProgressBar()
	ui.progress.TextFormatter = func() string { return ui.progressText }
	ui.progress.Hide()

	ui.actionBtn = widget.NewButton("", ui.onActionClick)
	ui.actionBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.refreshUITexts()

	// restore the last selection
	kind := ui.settings.GetMediaKind()
	ui.kindSelect.SetSelected(ui.kindLabel(kind))

	options := container.NewVBox(
		container.NewGridWithColumns(2, ui.qualityLabel, ui.formatLabel),
		container.NewGridWithColumns(2, ui.qualitySel, ui.formatSel),
	)

	content := container.NewVBox(
		container.NewBorder(nil, nil, nil, settingsBtn, ui.urlEntry),
		container.NewBorder(nil, nil, nil, ui.noAudioCheck, ui.kindSelect),
		options,
		ui.progress,
		ui.actionBtn,
	)

	ui.window.SetContent(container.NewPadded(content))
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	l := ui.localization
	ui.window.SetTitle(l.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(l.GetText(KeyEnterURL))
	ui.noAudioCheck.Text = l.GetText(KeyNoAudio)
	ui.noAudioCheck.Refresh()
	ui.qualityLabel.SetText(l.GetText(KeyQuality))
	ui.formatLabel.SetText(l.GetText(KeyFormat))

	kind := ui.kind
	ui.kindSelect.PlaceHolder = l.GetText(KeyChooseMediaKind)
	ui.kindSelect.Options = []string{l.GetText(KeyVideo), l.GetText(KeyAudio)}
	if kind != "" {
		// re-selecting repopulates the quality list with translated labels
		ui.kindSelect.SetSelected(ui.kindLabel(kind))
	}
	ui.kindSelect.Refresh()

	ui.updateActionState()
}

func (ui *RootUI) kindLabel(kind model.MediaKind) string {
	if kind == model.MediaKindAudio {
		return ui.localization.GetText(KeyAudio)
	}
	return ui.localization.GetText(KeyVideo)
}

// onKindChanged repopulates quality and format choices for the selected kind
func (ui *RootUI) onKindChanged() {
	var kind model.MediaKind
	switch ui.kindSelect.Selected {
	case ui.localization.GetText(KeyVideo):
		kind = model.MediaKindVideo
	case ui.localization.GetText(KeyAudio):
		kind = model.MediaKindAudio
	default:
		return
	}
	ui.kind = kind

	qualities := make([]string, 0, len(model.QualitiesFor(kind)))
	for _, q := range model.QualitiesFor(kind) {
		qualities = append(qualities, ui.qualityDisplay(q))
	}
	formats := make([]string, 0, len(model.FormatsFor(kind)))
	for _, f := range model.FormatsFor(kind) {
		formats = append(formats, strings.ToUpper(f))
	}

	ui.qualitySel.Options = qualities
	ui.qualitySel.SetSelected(ui.qualityDisplay(ui.settings.GetQuality(kind)))
	ui.formatSel.Options = formats
	ui.formatSel.SetSelected(strings.ToUpper(ui.settings.GetFormat(kind)))

	if kind == model.MediaKindVideo {
		ui.noAudioCheck.SetChecked(ui.settings.GetNoAudio())
		ui.noAudioCheck.Show()
	} else {
		ui.noAudioCheck.Hide()
	}

	ui.updateActionState()
}

func (ui *RootUI) qualityDisplay(q string) string {
	if q == download.QualityBest {
		return ui.localization.GetText(KeyBestQuality)
	}
	return q
}

func (ui *RootUI) qualityValue(display string) string {
	if display == ui.localization.GetText(KeyBestQuality) {
		return download.QualityBest
	}
	return display
}

// currentRequest reads the form
func (ui *RootUI) currentRequest() model.Request {
	return model.Request{
		URL:     strings.TrimSpace(ui.urlEntry.Text),
		Kind:    ui.kind,
		Quality: ui.qualityValue(ui.qualitySel.Selected),
		Format:  strings.ToLower(ui.formatSel.Selected),
		NoAudio: ui.kind == model.MediaKindVideo && ui.noAudioCheck.Checked,
	}
}

// updateActionState enables the action button once the form can be submitted
func (ui *RootUI) updateActionState() {
	if ui.actionBtn == nil {
		return
	}
	if ui.running {
		if ui.cancelling {
			ui.actionBtn.Disable()
		} else {
			ui.actionBtn.Enable()
		}
		ui.actionBtn.SetText(ui.localization.GetText(KeyCancel))
		return
	}

	ui.actionBtn.SetText(ui.localization.GetText(KeyStartDownload))
	text := strings.TrimSpace(ui.urlEntry.Text)
	if ui.kind != "" && text != "" && validateURL(text) == nil {
		ui.actionBtn.Enable()
	} else {
		ui.actionBtn.Disable()
	}
}

// validateURL accepts absolute http(s) URLs
func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// onActionClick starts a download, or cancels the running one
func (ui *RootUI) onActionClick() {
	if ui.running {
		ui.cancelBatch()
		return
	}

	req := ui.currentRequest()
	if req.URL == "" || ui.kind == "" {
		return
	}
	if err := validateURL(req.URL); err != nil {
		dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyInvalidURL), err), ui.window)
		return
	}

	ui.rememberSelections(req)
	ui.beginBatch()

	if platform.IsPlaylistURL(req.URL) && ui.expander != nil {
		ui.setProgress(0, ui.localization.GetText(KeyReadingPlaylist))
		go ui.expandPlaylist(req, ui.generation)
		return
	}
	ui.addRequests([]model.Request{req})
}

func (ui *RootUI) rememberSelections(req model.Request) {
	ui.settings.SetMediaKind(req.Kind)
	ui.settings.SetQuality(req.Kind, req.Quality)
	ui.settings.SetFormat(req.Kind, req.Format)
	if req.Kind == model.MediaKindVideo {
		ui.settings.SetNoAudio(req.NoAudio)
	}
}

// expandPlaylist runs off the UI goroutine and queues one task per entry
func (ui *RootUI) expandPlaylist(req model.Request, generation int) {
	ctx, cancel := context.WithTimeout(context.Background(), PlaylistTimeout)
	defer cancel()

	playlist, err := ui.expander.Expand(ctx, req.URL)
	ui.dispatch(func() {
		if generation != ui.generation || !ui.running {
			// cancelled while expanding
			return
		}
		if err != nil {
			ui.logger.Error("playlist expansion failed", "url", req.URL, "err", err)
			dialog.ShowError(fmt.Errorf("%s: %w", ui.localization.GetText(KeyPlaylistFailed), err), ui.window)
			ui.finishBatch()
			return
		}
		ui.logger.Info("playlist expanded", "url", req.URL, "title", playlist.Title, "entries", len(playlist.Entries))
		ui.addRequests(playlist.Requests(req))
	})
}

// addRequests queues tasks on the service. Must run on the UI goroutine so
// that updates for a new task are handled after it joins the batch.
func (ui *RootUI) addRequests(reqs []model.Request) {
	var errs []error
	for _, req := range reqs {
		task, err := ui.downloadSvc.AddTask(req)
		if err != nil {
			ui.logger.Warn("task not added", "url", req.URL, "err", err)
			if strings.Contains(err.Error(), "already exists") {
				err = errors.New(ui.localization.GetText(KeyAlreadyInQueue))
			}
			errs = append(errs, err)
			continue
		}
		ui.batch[task.ID] = task
		ui.batchOrder = append(ui.batchOrder, task.ID)
	}

	if len(errs) > 0 {
		dialog.ShowError(errors.Join(errs...), ui.window)
	}
	if len(ui.batch) == 0 {
		ui.finishBatch()
		return
	}
	ui.urlEntry.SetText("")
	ui.renderBatch()
}

func (ui *RootUI) beginBatch() {
	ui.generation++
	ui.batch = make(map[string]*model.DownloadTask)
	ui.batchOrder = nil
	ui.reported = make(map[string]bool)
	ui.running = true
	ui.cancelling = false

	ui.setProgress(0, ui.localization.GetText(KeyStarting))
	ui.progress.Show()
	ui.updateActionState()
}

// cancelBatch stops every unfinished task of the batch
func (ui *RootUI) cancelBatch() {
	ui.cancelling = true
	ui.setProgress(ui.progress.Value, ui.localization.GetText(KeyCancelling))
	ui.updateActionState()

	for _, id := range ui.batchOrder {
		if ui.batch[id].Status.IsFinished() {
			continue
		}
		// StopTask removes partial files, keep it off the UI goroutine
		go func(id string) {
			if err := ui.downloadSvc.StopTask(id); err != nil {
				ui.logger.Warn("stop failed", "id", id, "err", err)
			}
		}(id)
	}
	if len(ui.batch) == 0 {
		// still expanding a playlist; the expansion result is dropped
		ui.finishBatch()
	}
}

// onTaskUpdate folds a service update into the batch. Runs on the UI goroutine.
func (ui *RootUI) onTaskUpdate(task *model.DownloadTask) {
	if _, ok := ui.batch[task.ID]; !ok || !ui.running {
		return
	}
	ui.batch[task.ID] = task

	if task.Status.IsFinished() && !ui.reported[task.ID] {
		ui.reported[task.ID] = true
		ui.onTaskFinished(task)
	}

	ui.renderBatch()
}

func (ui *RootUI) onTaskFinished(task *model.DownloadTask) {
	switch task.Status {
	case model.TaskStatusSucceeded:
		ui.logger.Info("download completed", "id", task.ID, "output", task.OutputPath)
		if ui.settings.GetAutoRevealOnComplete() && task.OutputPath != "" {
			path := task.OutputPath
			go func() {
				if err := ui.reveal(path); err != nil {
					ui.logger.Warn("reveal failed", "path", path, "err", err)
				}
			}()
		}
	case model.TaskStatusCancelled:
		ui.logger.Warn("download cancelled by user", "id", task.ID)
	case model.TaskStatusFailed:
		ui.logger.Error("download failed", "id", task.ID, "err", task.LastError)
		dialog.ShowError(errors.New(task.LastError), ui.window)
	}
}

// renderBatch shows the batch state on the progress bar
func (ui *RootUI) renderBatch() {
	total := len(ui.batchOrder)
	if total == 0 {
		return
	}

	sum, finished := 0, 0
	for _, id := range ui.batchOrder {
		task := ui.batch[id]
		sum += task.Percent
		if task.Status.IsFinished() {
			finished++
		}
	}

	if finished == total {
		ui.setProgress(float64(sum)/float64(total)/100, ui.resultText())
		ui.finishBatch()
		return
	}

	if ui.cancelling {
		ui.setProgress(float64(sum)/float64(total)/100, ui.localization.GetText(KeyCancelling))
		return
	}

	if total == 1 {
		task := ui.batch[ui.batchOrder[0]]
		ui.setProgress(task.Progress(), ui.taskLabel(task))
		return
	}
	ui.setProgress(float64(sum)/float64(total)/100,
		fmt.Sprintf(ui.localization.GetText(KeyBatchProgress), finished, total))
}

// taskLabel is the progress text for a running task
func (ui *RootUI) taskLabel(task *model.DownloadTask) string {
	switch {
	case task.Label == download.FinishingLabel:
		return ui.localization.GetText(KeyFinishing)
	case task.Label != "":
		return task.Label
	case task.Status == model.TaskStatusStopping:
		return ui.localization.GetText(KeyCancelling)
	default:
		return ui.localization.GetText(KeyStarting)
	}
}

// resultText summarizes a finished batch. The first failure wins.
func (ui *RootUI) resultText() string {
	cancelled := false
	for _, id := range ui.batchOrder {
		task := ui.batch[id]
		switch task.Status {
		case model.TaskStatusFailed:
			return IconWarning + " " + truncateMessage(task.LastError, ErrorDisplayLength)
		case model.TaskStatusCancelled:
			cancelled = true
		}
	}
	if cancelled {
		return ui.localization.GetText(KeyDownloadCancelled)
	}
	return ui.localization.GetText(KeyDownloadCompleted)
}

// finishBatch returns the form to its idle state and hides the progress bar later
func (ui *RootUI) finishBatch() {
	ui.running = false
	ui.cancelling = false
	ui.updateActionState()

	generation := ui.generation
	time.AfterFunc(ResultDisplayTime, func() {
		ui.dispatch(func() {
			if generation == ui.generation && !ui.running {
				ui.progress.Hide()
			}
		})
	})
}

func (ui *RootUI) setProgress(value float64, text string) {
	ui.progressText = text
	ui.progress.SetValue(value)
	ui.progress.Refresh()
}

// onShowSettings shows the settings dialog and applies the saved values
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, ui.applySettings)
}

func (ui *RootUI) applySettings() {
	dir := ui.settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		ui.logger.Warn("cannot create download directory", "dir", dir, "err", err)
	}
	ui.downloadSvc.SetDownloadDirectory(dir)
	ui.downloadSvc.SetMaxParallelDownloads(ui.settings.GetMaxParallelDownloads())

	if lang := ui.settings.GetLanguage(); lang != ui.localization.GetCurrentLanguage() {
		ui.onLanguageChange(lang)
	}
}

// truncateMessage shortens msg to n runes for display
func truncateMessage(msg string, n int) string {
	msg = strings.TrimSpace(msg)
	if utf8.RuneCountInString(msg) <= n {
		return msg
	}
	return string([]rune(msg)[:n]) + Ellipsis
}
