package ui

import "testing"

func TestLocalization_Defaults(t *testing.T) {
	l := NewLocalization()

	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected default language en, got %s", l.GetCurrentLanguage())
	}
	if got := l.GetText(KeyStartDownload); got != "Start Download" {
		t.Errorf("Unexpected English text %q", got)
	}
}

func TestLocalization_Portuguese(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("pt")

	if got := l.GetText(KeyStartDownload); got != "Iniciar Download" {
		t.Errorf("Unexpected Portuguese text %q", got)
	}
	if got := l.GetText(KeyDownloadCancelled); got != "❌ Download cancelado" {
		t.Errorf("Unexpected Portuguese text %q", got)
	}
}

func TestLocalization_UnknownLanguageIgnored(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("ru")

	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Unsupported language should keep en, got %s", l.GetCurrentLanguage())
	}
}

func TestLocalization_Fallbacks(t *testing.T) {
	l := NewLocalization()
	l.SetLanguage("pt")

	if got := l.GetText("missing_key"); got != "missing_key" {
		t.Errorf("Missing key should fall back to the key itself, got %q", got)
	}
}

func TestLocalization_SystemLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "pt_BR.UTF-8")

	l := NewLocalization()
	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "pt" {
		t.Errorf("Expected pt from LANG, got %s", l.GetCurrentLanguage())
	}

	t.Setenv("LANG", "de_DE.UTF-8")
	l.SetLanguage("system")
	if l.GetCurrentLanguage() != "en" {
		t.Errorf("Expected en for unsupported locale, got %s", l.GetCurrentLanguage())
	}
}

func TestLocalization_AllKeysTranslated(t *testing.T) {
	l := NewLocalization()
	for key := range l.texts["en"] {
		if _, ok := l.texts["pt"][key]; !ok {
			t.Errorf("Missing Portuguese text for %s", key)
		}
	}
}
