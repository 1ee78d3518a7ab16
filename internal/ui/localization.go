package ui

import (
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyEnterURL          = "enter_url"
	KeyChooseMediaKind   = "choose_media_kind"
	KeyVideo             = "video"
	KeyAudio             = "audio"
	KeyNoAudio           = "no_audio"
	KeyQuality           = "quality"
	KeyFormat            = "format"
	KeyBestQuality       = "best_quality"
	KeyStartDownload     = "start_download"
	KeyCancel            = "cancel"
	KeyStarting          = "starting"
	KeyCancelling        = "cancelling"
	KeyFinishing         = "finishing"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadCancelled = "download_cancelled"
	KeyDownloadFailed    = "download_failed"
	KeyBatchProgress     = "batch_progress"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyDownloadDirectory = "download_directory"
	KeyMaxParallel       = "max_parallel"
	KeyLogging           = "logging"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyRestartRequired   = "restart_required"
	KeyInvalidURL        = "invalid_url"
	KeyAlreadyInQueue    = "already_in_queue"
	KeyReadingPlaylist   = "reading_playlist"
	KeyPlaylistFailed    = "playlist_failed"
	KeyErrorOpeningFile  = "error_opening_file"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" follows the LANG environment variable.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"pt": "Português",
	}
}

func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(env); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "pt") {
				return "pt"
			}
			return "en"
		}
	}
	return "en"
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "HB Downloader",
		KeyEnterURL:          "Paste the URL here",
		KeyChooseMediaKind:   "Choose an option",
		KeyVideo:             "Video",
		KeyAudio:             "Audio",
		KeyNoAudio:           "No audio",
		KeyQuality:           "QUALITY",
		KeyFormat:            "FORMAT",
		KeyBestQuality:       "Best",
		KeyStartDownload:     "Start Download",
		KeyCancel:            "Cancel",
		KeyStarting:          "Starting...",
		KeyCancelling:        "Cancelling...",
		KeyFinishing:         "Finishing...",
		KeyDownloadCompleted: "✅ Download complete!",
		KeyDownloadCancelled: "❌ Download cancelled",
		KeyDownloadFailed:    "Download failed",
		KeyBatchProgress:     "%d of %d done",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyDownloadDirectory: "Download Directory",
		KeyMaxParallel:       "Max Parallel Downloads",
		KeyLogging:           "Write log file",
		KeyAutoReveal:        "Reveal file when done",
		KeySave:              "Save",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyRestartRequired:   "Logging changes apply after a restart.",
		KeyInvalidURL:        "Invalid URL",
		KeyAlreadyInQueue:    "Already in queue",
		KeyReadingPlaylist:   "Reading playlist...",
		KeyPlaylistFailed:    "Could not read playlist",
		KeyErrorOpeningFile:  "Error opening file",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "HB Downloader",
		KeyEnterURL:          "Cole a URL aqui",
		KeyChooseMediaKind:   "Escolha uma opção",
		KeyVideo:             "Vídeo",
		KeyAudio:             "Áudio",
		KeyNoAudio:           "Sem áudio",
		KeyQuality:           "QUALIDADE",
		KeyFormat:            "FORMATO",
		KeyBestQuality:       "Melhor",
		KeyStartDownload:     "Iniciar Download",
		KeyCancel:            "Cancelar",
		KeyStarting:          "Iniciando...",
		KeyCancelling:        "Cancelando...",
		KeyFinishing:         "Finalizando...",
		KeyDownloadCompleted: "✅ Download concluído!",
		KeyDownloadCancelled: "❌ Download cancelado",
		KeyDownloadFailed:    "Falha no download",
		KeyBatchProgress:     "%d de %d concluídos",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyDownloadDirectory: "Pasta de download",
		KeyMaxParallel:       "Downloads simultâneos",
		KeyLogging:           "Gravar arquivo de log",
		KeyAutoReveal:        "Mostrar arquivo ao concluir",
		KeySave:              "Salvar",
		KeyBrowse:            "Procurar",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyRestartRequired:   "Alterações de log valem após reiniciar.",
		KeyInvalidURL:        "URL inválida",
		KeyAlreadyInQueue:    "Já está na fila",
		KeyReadingPlaylist:   "Lendo playlist...",
		KeyPlaylistFailed:    "Não foi possível ler a playlist",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
	}
}
