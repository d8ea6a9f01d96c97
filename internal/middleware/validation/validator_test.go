package validation

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch/backend/internal/models"
)

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Post("/api/v1/search", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func post(t *testing.T, app *fiber.App, contentType, body string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte(body)))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func TestValidQueryPasses(t *testing.T) {
	resp, _ := post(t, testApp(), "application/json", `{"query":"budget report"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMissingQueryRejected(t *testing.T) {
	resp, body := post(t, testApp(), "application/json", `{"userId":"u1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "Query is required", errResp.Error)
}

func TestOverlongQueryRejected(t *testing.T) {
	long := strings.Repeat("a", 501)
	resp, _ := post(t, testApp(), "application/json", `{"query":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQueryAtLimitPasses(t *testing.T) {
	exact := strings.Repeat("a", 500)
	resp, _ := post(t, testApp(), "application/json", `{"query":"`+exact+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScriptInjectionRejected(t *testing.T) {
	cases := []string{
		`<script>alert(1)</script>`,
		`<IFRAME src=x>`,
		`javascript:void(0)`,
		`x onerror=alert(1)`,
	}
	for _, query := range cases {
		raw, _ := json.Marshal(map[string]string{"query": query})
		resp, _ := post(t, testApp(), "application/json", string(raw))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q should be rejected", query)
	}
}

func TestUnsupportedContentTypeRejected(t *testing.T) {
	resp, _ := post(t, testApp(), "text/xml", `<query>hi</query>`)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestMalformedJSONRejected(t *testing.T) {
	resp, _ := post(t, testApp(), "application/json", `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNonSearchRoutesUntouched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp, err := testApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
