package catalog

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedContainsBaseLocale(t *testing.T) {
	t.Parallel()

	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	locales := bundle.Locales()
	found := false
	for _, locale := range locales {
		if locale == BaseLocale {
			found = true
		}
	}
	if !found {
		t.Fatalf("locales = %v, want to include %s", locales, BaseLocale)
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	t.Parallel()

	bundle := Default()
	value, ok := bundle.Message("fr-FR", "lookup.srd_only")
	if !ok {
		t.Fatal("expected base-locale fallback for unknown locale")
	}
	if !strings.Contains(value, "SRD") {
		t.Fatalf("message = %q, want SRD notice", value)
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	t.Parallel()

	bundle := Default()
	locale, messages := bundle.NamespaceMessagesWithFallback("xx-XX", "errors")
	if locale != BaseLocale {
		t.Fatalf("resolved locale = %q, want %q", locale, BaseLocale)
	}
	if _, ok := messages["NOT_FOUND"]; !ok {
		t.Fatal("expected NOT_FOUND message in errors namespace")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	t.Parallel()

	badFS := fstest.MapFS{
		"locales/en-US/errors.yaml": {Data: []byte(
			"locale: \"pt-BR\"\nnamespace: \"errors\"\nmessages:\n  \"A\": \"a\"\n",
		)},
	}
	if _, err := LoadFromFS(badFS); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRejectsDuplicateKeyAcrossNamespaces(t *testing.T) {
	t.Parallel()

	badFS := fstest.MapFS{
		"locales/en-US/one.yaml": {Data: []byte(
			"locale: \"en-US\"\nnamespace: \"one\"\nmessages:\n  \"shared\": \"a\"\n",
		)},
		"locales/en-US/two.yaml": {Data: []byte(
			"locale: \"en-US\"\nnamespace: \"two\"\nmessages:\n  \"shared\": \"b\"\n",
		)},
	}
	if _, err := LoadFromFS(badFS); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestParseCatalogFileRejectsUnquotedEntries(t *testing.T) {
	t.Parallel()

	if _, err := parseCatalogFile([]byte("locale: en-US\n")); err == nil {
		t.Fatal("expected unquoted locale error")
	}
}
