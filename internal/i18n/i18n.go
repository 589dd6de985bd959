// Package i18n serves flat key/value message catalogs, one JSON file per
// language, with the default language filling in missing keys.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

const (
	LangTH = "th"
	LangEN = "en"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

type Manager struct {
	defaultLanguage string
	catalogs        map[string]map[string]string
	supported       []string
	matchOrder      []string
	matcher         language.Matcher
}

// NewManager loads catalogs from localesDir, or from the copies compiled into
// the binary when localesDir is empty.
func NewManager(defaultLanguage string, localesDir string) (*Manager, error) {
	if strings.TrimSpace(localesDir) == "" {
		source, err := fs.Sub(embeddedLocales, "locales")
		if err != nil {
			return nil, err
		}
		return NewManagerFS(defaultLanguage, source)
	}
	return NewManagerFS(defaultLanguage, os.DirFS(localesDir))
}

func NewManagerFS(defaultLanguage string, source fs.FS) (*Manager, error) {
	catalogs, err := loadCatalogs(source)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{LangEN, LangTH} {
		if _, ok := catalogs[required]; !ok {
			return nil, fmt.Errorf("required locale %q missing", required)
		}
	}

	manager := &Manager{catalogs: catalogs}
	manager.supported = make([]string, 0, len(catalogs))
	for lang := range catalogs {
		manager.supported = append(manager.supported, lang)
	}
	slices.Sort(manager.supported)

	manager.defaultLanguage = LangEN
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)

	// The matcher falls back to its first tag, so the default goes first.
	manager.matchOrder = append([]string{manager.defaultLanguage}, slices.DeleteFunc(slices.Clone(manager.supported), func(lang string) bool {
		return lang == manager.defaultLanguage
	})...)
	tags := make([]language.Tag, 0, len(manager.matchOrder))
	for _, lang := range manager.matchOrder {
		tags = append(tags, language.Make(lang))
	}
	manager.matcher = language.NewMatcher(tags)
	return manager, nil
}

func loadCatalogs(source fs.FS) (map[string]map[string]string, error) {
	files, err := fs.Glob(source, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no locales found")
	}

	catalogs := make(map[string]map[string]string, len(files))
	for _, file := range files {
		lang := strings.ToLower(strings.TrimSuffix(file, path.Ext(file)))
		content, err := fs.ReadFile(source, file)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", lang)
		}
		catalogs[lang] = messages
	}
	return catalogs, nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	return slices.Clone(manager.supported)
}

// NormalizeLanguage reduces a tag such as "th_TH" to its base language and
// answers the default for anything without a catalog.
func (manager *Manager) NormalizeLanguage(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return manager.defaultLanguage
	}
	base, _ := tag.Base()
	if _, ok := manager.catalogs[base.String()]; ok {
		return base.String()
	}
	return manager.defaultLanguage
}

func (manager *Manager) DetectFromAcceptLanguage(raw string) string {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return manager.defaultLanguage
	}
	_, index, confidence := manager.matcher.Match(tags...)
	if confidence == language.No {
		return manager.defaultLanguage
	}
	return manager.matchOrder[index]
}

func (manager *Manager) Messages(lang string) map[string]string {
	fallback := manager.catalogs[manager.defaultLanguage]
	target := manager.catalogs[manager.NormalizeLanguage(lang)]

	result := make(map[string]string, len(fallback)+len(target))
	maps.Copy(result, fallback)
	maps.Copy(result, target)
	return result
}

func (manager *Manager) Translate(lang string, key string) string {
	if value := manager.Messages(lang)[key]; strings.TrimSpace(value) != "" {
		return value
	}
	return key
}
