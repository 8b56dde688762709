// Package catalog loads locale message catalogs embedded with the binary.
//
// Catalog files are a deliberately small YAML subset: a quoted locale, a
// quoted namespace, and a flat map of quoted keys to quoted values. Keeping
// the format restricted lets the loader stay dependency-free and makes bad
// catalog files fail at startup instead of at render time.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

// LocaleCatalog stores all messages for one locale, grouped by namespace.
type LocaleCatalog struct {
	Locale     string
	Namespaces map[string]map[string]string
	Messages   map[string]string
}

// Bundle contains all locale catalogs loaded from an fs.FS.
type Bundle struct {
	locales map[string]*LocaleCatalog
}

var defaultBundle = mustLoadAndRegisterEmbedded()

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads catalog files matching locales/<locale>/<namespace>.yaml.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]*LocaleCatalog{}}
	for _, filePath := range paths {
		data, err := fs.ReadFile(catalogFS, filePath)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", filePath, err)
		}
		if err := bundle.addFile(filePath, data); err != nil {
			return nil, err
		}
	}

	if _, ok := bundle.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) addFile(filePath string, data []byte) error {
	file, err := parseCatalogFile(data)
	if err != nil {
		return fmt.Errorf("parse catalog %s: %w", filePath, err)
	}

	wantLocale := path.Base(path.Dir(filePath))
	wantNamespace := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if file.locale != wantLocale {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", filePath, file.locale, wantLocale)
	}
	if file.namespace != wantNamespace {
		return fmt.Errorf("catalog %s: namespace %q must match filename namespace %q", filePath, file.namespace, wantNamespace)
	}

	localeCatalog, ok := b.locales[file.locale]
	if !ok {
		localeCatalog = &LocaleCatalog{
			Locale:     file.locale,
			Namespaces: map[string]map[string]string{},
			Messages:   map[string]string{},
		}
		b.locales[file.locale] = localeCatalog
	}
	if _, exists := localeCatalog.Namespaces[file.namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q already defined for locale %q", filePath, file.namespace, file.locale)
	}

	for key, value := range file.messages {
		if _, exists := localeCatalog.Messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", filePath, key, file.locale)
		}
		localeCatalog.Messages[key] = value
	}
	localeCatalog.Namespaces[file.namespace] = file.messages
	return nil
}

// Register registers all catalog messages with x/text/message so renderers
// can use message.NewPrinter with locale matching.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		messages := b.locales[locale].Messages
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := message.SetString(tag, key, messages[key]); err != nil {
				return fmt.Errorf("register message %q for %q: %w", key, locale, err)
			}
		}
	}
	return nil
}

// Locales returns all available locale identifiers.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Message returns one message value with base-locale fallback.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil || strings.TrimSpace(key) == "" {
		return "", false
	}
	if catalog, ok := b.locales[strings.TrimSpace(locale)]; ok {
		if value, exists := catalog.Messages[key]; exists {
			return value, true
		}
	}
	if catalog, ok := b.locales[BaseLocale]; ok {
		value, exists := catalog.Messages[key]
		return value, exists
	}
	return "", false
}

// NamespaceMessages returns a namespace message map copy for a locale.
func (b *Bundle) NamespaceMessages(locale, namespace string) map[string]string {
	if b == nil {
		return map[string]string{}
	}
	catalog, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		return map[string]string{}
	}
	messages, ok := catalog.Namespaces[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(messages))
	for key, value := range messages {
		out[key] = value
	}
	return out
}

// NamespaceMessagesWithFallback returns namespace messages and the locale that
// satisfied the lookup, falling back to the base locale.
func (b *Bundle) NamespaceMessagesWithFallback(locale, namespace string) (string, map[string]string) {
	trimmedLocale := strings.TrimSpace(locale)
	if messages := b.NamespaceMessages(trimmedLocale, namespace); len(messages) > 0 {
		return trimmedLocale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func mustLoadAndRegisterEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}

type catalogFile struct {
	locale    string
	namespace string
	messages  map[string]string
}

func parseCatalogFile(data []byte) (catalogFile, error) {
	out := catalogFile{messages: map[string]string{}}
	inMessages := false

	for _, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "locale:"):
			value, err := unquote(strings.TrimPrefix(line, "locale:"))
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse locale: %w", err)
			}
			out.locale = value
		case strings.HasPrefix(line, "namespace:"):
			value, err := unquote(strings.TrimPrefix(line, "namespace:"))
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse namespace: %w", err)
			}
			out.namespace = value
		case line == "messages:":
			inMessages = true
		default:
			if !inMessages {
				return catalogFile{}, fmt.Errorf("unexpected line %q", line)
			}
			key, value, err := parseMessageEntry(line)
			if err != nil {
				return catalogFile{}, fmt.Errorf("parse message entry %q: %w", line, err)
			}
			if key == "" {
				return catalogFile{}, fmt.Errorf("message key cannot be blank")
			}
			out.messages[key] = value
		}
	}

	if out.locale == "" {
		return catalogFile{}, fmt.Errorf("missing locale")
	}
	if out.namespace == "" {
		return catalogFile{}, fmt.Errorf("missing namespace")
	}
	if len(out.messages) == 0 {
		return catalogFile{}, fmt.Errorf("missing messages")
	}
	return out, nil
}

func parseMessageEntry(line string) (string, string, error) {
	keyToken, rest, err := splitQuotedToken(line)
	if err != nil {
		return "", "", err
	}
	key, err := strconv.Unquote(keyToken)
	if err != nil {
		return "", "", fmt.Errorf("unquote key: %w", err)
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ":") {
		return "", "", fmt.Errorf("missing ':' separator")
	}
	value, err := unquote(strings.TrimPrefix(rest, ":"))
	if err != nil {
		return "", "", fmt.Errorf("unquote value: %w", err)
	}
	return key, value, nil
}

func unquote(value string) (string, error) {
	return strconv.Unquote(strings.TrimSpace(value))
}

// splitQuotedToken returns the leading double-quoted token and the remainder.
func splitQuotedToken(line string) (string, string, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, `"`) {
		return "", "", fmt.Errorf("expected quoted token")
	}
	escaped := false
	for i := 1; i < len(trimmed); i++ {
		ch := trimmed[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			return trimmed[:i+1], trimmed[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("unterminated quoted token")
}
