package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/i18n"
	"github.com/terraincognita07/fortuna/internal/models"
	"github.com/terraincognita07/fortuna/internal/services"
	"gorm.io/gorm"
)

const testPassword = "StrongPass1"

type testApp struct {
	app      *fiber.App
	database *gorm.DB
	handler  *Handler
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	_, testFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve current test file path")
	}
	internalDir := filepath.Dir(filepath.Dir(testFile))
	templatesDir := filepath.Join(internalDir, "templates")
	localesDir := filepath.Join(internalDir, "i18n", "locales")

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "fortuna-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager("en", localesDir)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	handler, err := NewHandler(database, "test-secret-key-with-enough-length!", templatesDir, i18nManager, Options{})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return testApp{app: app, database: database, handler: handler}
}

func (env testApp) createAstrologer(t *testing.T, email string, name string) models.Astrologer {
	t.Helper()

	astrologer, err := env.handler.authService.Register(context.Background(), services.RegistrationInput{
		Email:           email,
		Name:            name,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return astrologer
}

func (env testApp) login(t *testing.T, email string) string {
	t.Helper()
	return loginAndExtractAuthCookie(t, env.app, email, testPassword)
}

func loginAndExtractAuthCookie(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	request := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login status 303, got %d", response.StatusCode)
	}
	if cookie := responseCookie(response.Cookies(), authCookieName); cookie != nil && cookie.Value != "" {
		return cookie.Name + "=" + cookie.Value
	}

	t.Fatal("auth cookie is missing in login response")
	return ""
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// doJSON sends body as JSON with an Accept: application/json header.
func (env testApp) doJSON(t *testing.T, method string, path string, authCookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func (env testApp) doForm(t *testing.T, path string, authCookie string, form url.Values) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return response
}

func (env testApp) get(t *testing.T, path string, authCookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}
	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return response
}

type apiErrorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors"`
}

func readAPIError(t *testing.T, body io.Reader) apiErrorBody {
	t.Helper()

	payload := apiErrorBody{}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload
}

type createdBody struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// mustCreate expects a 201 and returns the created record's id.
func mustCreate(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()

	if response.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status 201, got %d: %s", response.StatusCode, body)
	}
	payload := createdBody{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode created body: %v", err)
	}
	if payload.Data.ID == "" {
		t.Fatal("created body has no id")
	}
	return payload.Data.ID
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func validClientPayload(firstName string) map[string]any {
	return map[string]any{
		"first_name":  firstName,
		"last_name":   "Srisuk",
		"gender":      "female",
		"birth_date":  "1990-04-13",
		"birth_time":  "06:30",
		"birth_place": "Chiang Mai",
	}
}
