package i18n

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadEmbeddedLocale(t, LangEN)
	th := mustLoadEmbeddedLocale(t, LangTH)

	if missing := missingKeys(en, th); len(missing) > 0 {
		t.Errorf("keys missing in th locale: %s", strings.Join(missing, ", "))
	}
	if missing := missingKeys(th, en); len(missing) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missing, ", "))
	}
}

func TestLocaleValuesAreNotBlank(t *testing.T) {
	for _, lang := range []string{LangEN, LangTH} {
		for key, value := range mustLoadEmbeddedLocale(t, lang) {
			if strings.TrimSpace(value) == "" {
				t.Errorf("%s: key %q has a blank value", lang, key)
			}
		}
	}
}

func mustLoadEmbeddedLocale(t *testing.T, lang string) map[string]string {
	t.Helper()

	content, err := embeddedLocales.ReadFile("locales/" + lang + ".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", lang, err)
	}
	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", lang, err)
	}
	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	keys := make([]string, 0, len(source))
	for key := range source {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
