package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/terraincognita07/fortuna/internal/models"
)

var pageTemplates = []string{
	"login",
	"register",
	"dashboard",
	"clients",
	"client_form",
	"client_detail",
	"tarot",
	"not_found",
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"t": func(messages map[string]string, key string) string {
			return translateMessage(messages, key)
		},
		"formatDate": func(value time.Time, layout string) string {
			if value.IsZero() {
				return ""
			}
			return value.Format(layout)
		},
		"formatDatePtr": func(value *time.Time, layout string) string {
			if value == nil || value.IsZero() {
				return ""
			}
			return value.Format(layout)
		},
		"genderLabel": func(messages map[string]string, gender string) string {
			if strings.TrimSpace(gender) == "" {
				return ""
			}
			return translateMessage(messages, "gender."+gender)
		},
		"astrologyLabel": func(messages map[string]string, astrologyType string) string {
			return translateMessage(messages, "astrology."+astrologyType)
		},
		"spreadLabel": func(messages map[string]string, spreadType string) string {
			return translateMessage(messages, "spread."+spreadType)
		},
		"fieldError": func(errors map[string][]string, field string) string {
			if messages := errors[field]; len(messages) > 0 {
				return messages[0]
			}
			return ""
		},
		"isActiveRoute": func(currentPath string, route string) bool {
			path := strings.TrimSpace(currentPath)
			return path == route || strings.HasPrefix(path, route+"?") || strings.HasPrefix(path, route+"/")
		},
		"add": func(left int, right int) int {
			return left + right
		},
		"toJSON": func(value any) string {
			serialized, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return ""
			}
			return string(serialized)
		},
		"genders": func() []string {
			return models.Genders
		},
		"astrologyTypes": func() []string {
			return models.AstrologyTypes
		},
		"spreadTypes": func() []string {
			return models.SpreadTypes
		},
	}
}

func parsePageTemplates(templateDir string) (map[string]*template.Template, error) {
	funcMap := templateFuncs()
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, page := range pageTemplates {
		parsed, err := template.New("base").Funcs(funcMap).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = parsed
	}
	return templates, nil
}
