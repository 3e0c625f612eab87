package blogfs

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, root string, opts ...Option) *App {
	t.Helper()
	app, err := New(Config{BlogsDir: root, LogLevel: "off", URL: "https://example.com"}, opts...)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func doGet(t *testing.T, app *App, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{BlogsDir: filepath.Join(t.TempDir(), "missing"), LogLevel: "off"})
	assert.Error(t, err)

	_, err = New(Config{BlogsDir: t.TempDir(), Renderer: "markdown2", LogLevel: "off"})
	assert.Error(t, err)
}

func TestHandleList(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	for _, target := range []string{"/get", "/get/"} {
		rec := doGet(t, app, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

		var body struct {
			Blogs []map[string]interface{} `json:"blogs"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Blogs, 2)
		assert.Equal(t, "B", body.Blogs[0]["title"])
		assert.Equal(t, "A", body.Blogs[1]["title"])
		assert.Equal(t, "c.png", body.Blogs[1]["cover"])
	}
}

func TestHandleListEmptyIsArray(t *testing.T) {
	app := newTestApp(t, t.TempDir())

	rec := doGet(t, app, "/get")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"blogs":[]}`, rec.Body.String())
}

func TestHandleListStrict(t *testing.T) {
	root := sampleBlogs(t)
	writeFile(t, root, "broken/overview.json", `{`)

	rec := doGet(t, newTestApp(t, root), "/get")
	assert.Equal(t, http.StatusOK, rec.Code)

	strict, err := New(Config{BlogsDir: root, LogLevel: "off", StrictListing: true})
	require.NoError(t, err)
	t.Cleanup(strict.Close)
	rec = doGet(t, strict, "/get")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
}

func TestHandleBlog(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	rec := doGet(t, app, "/get/a")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Blog map[string]interface{} `json:"blog"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "A", body.Blog["title"])
	assert.Equal(t, "2024-01-01", body.Blog["date"])
	assert.Contains(t, body.Blog["content"], "<h1>Title</h1>")
}

func TestHandleBlogNotFound(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	for _, target := range []string{"/get/missing", "/get/..", "/get/.hidden", "/get/..%2Fa"} {
		rec := doGet(t, app, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "not found", decodeError(t, rec), target)
	}
}

func TestHandleBlogMalformedMetadataHidesDetail(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad/overview.json", `{"date": nope}`)
	writeFile(t, root, "bad/content.md", "text")
	app := newTestApp(t, root)

	rec := doGet(t, app, "/get/bad")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "overview.json")
}

func TestHandleBlogWithBasicRenderer(t *testing.T) {
	root := sampleBlogs(t)
	app, err := New(Config{BlogsDir: root, LogLevel: "off", Renderer: "basic"})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	rec := doGet(t, app, "/get/a")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Blog map[string]interface{} `json:"blog"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Blog["content"], "<h1>Title</h1>")
}

func TestHandleCover(t *testing.T) {
	root := sampleBlogs(t)
	app := newTestApp(t, root)

	rec := doGet(t, app, "/get/a/cover")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	want, err := os.ReadFile(filepath.Join(root, "a", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, want, rec.Body.Bytes())
}

func TestHandleCoverFallsBackToJPEG(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x/overview.json", `{"date":"2024-01-01","cover":"cover.bin"}`)
	writeFile(t, root, "x/cover.bin", "not really an image")
	app := newTestApp(t, root)

	rec := doGet(t, app, "/get/x/cover")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "not really an image", rec.Body.String())
}

func TestHandleCoverNotFound(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	for _, target := range []string{"/get/b/cover", "/get/missing/cover"} {
		rec := doGet(t, app, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "not found", decodeError(t, rec), target)
	}
}

func TestHandleCoverResize(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	rec := doGet(t, app, "/get/a/cover?width=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 5, cfg.Height)

	// Wider than the original: served untouched.
	rec = doGet(t, app, "/get/a/cover?width=400")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	_, format, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestHandleCoverRejectsBadWidth(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	for _, w := range []string{"0", "-5", "abc", "999999"} {
		rec := doGet(t, app, "/get/a/cover?width="+w)
		assert.Equal(t, http.StatusBadRequest, rec.Code, w)
		assert.Equal(t, "invalid width", decodeError(t, rec), w)
	}
}

func TestHandleCoverResizeRateLimited(t *testing.T) {
	app, err := New(Config{BlogsDir: sampleBlogs(t), LogLevel: "off", ResizeLimit: 1})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	rec := doGet(t, app, "/get/a/cover?width=10")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(t, app, "/get/a/cover?width=10")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Plain cover requests are not limited.
	rec = doGet(t, app, "/get/a/cover")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleCoverTooLargeToResize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "h/overview.json", `{"date":"2024-01-01","cover":"huge.png"}`)
	writePNGHeader(t, root, "h/huge.png", 100000, 100000)
	app := newTestApp(t, root)

	rec := doGet(t, app, "/get/h/cover?width=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	want, err := os.ReadFile(filepath.Join(root, "h", "huge.png"))
	require.NoError(t, err)
	assert.Equal(t, want, rec.Body.Bytes())
}

func TestHeadRequests(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	tests := []struct {
		target string
		code   int
	}{
		{"/get", http.StatusOK},
		{"/get/a", http.StatusOK},
		{"/get/a/cover", http.StatusOK},
		{"/feed.xml", http.StatusOK},
		{"/sitemap.xml", http.StatusOK},
		{"/get/missing", http.StatusNotFound},
		{"/get/b/cover", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodHead, tt.target, nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, tt.target)
	}

	req := httptest.NewRequest(http.MethodHead, "/get/missing", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Empty(t, rec.Body.String())
}

func TestHandleFeed(t *testing.T) {
	root := sampleBlogs(t)
	writeFile(t, root, "c/overview.json", `{"date":"2023-05-05","title":"C","summary":"Given summary"}`)
	writeFile(t, root, "c/content.md", "unused")
	app := newTestApp(t, root)

	rec := doGet(t, app, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")

	var feed rssXML
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed.Channel.Items, 3)
	assert.Equal(t, "B", feed.Channel.Items[0].Title)
	assert.Equal(t, "https://example.com/blog/b/", feed.Channel.Items[0].Link)
	assert.Equal(t, "Body of B.", feed.Channel.Items[0].Description)
	assert.NotEmpty(t, feed.Channel.Items[0].PubDate)
	assert.Equal(t, "Given summary", feed.Channel.Items[2].Description)
}

func TestHandleSitemap(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	rec := doGet(t, app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)

	var sm sitemapURLSet
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &sm))
	require.Len(t, sm.URLs, 3)
	assert.Equal(t, "https://example.com", sm.URLs[0].Loc)
	assert.Equal(t, "https://example.com/blog/b/", sm.URLs[1].Loc)
	assert.Equal(t, "2024-06-01", sm.URLs[1].LastMod)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t))

	rec := doGet(t, app, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestCustomRoutes(t *testing.T) {
	app := newTestApp(t, sampleBlogs(t), WithCustomRoutes(func(a *App) {
		a.Echo.GET("/healthz", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
	}))

	rec := doGet(t, app, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCORS(t *testing.T) {
	app, err := New(Config{BlogsDir: sampleBlogs(t), LogLevel: "off", AllowOrigins: []string{"https://front.example"}})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.Header.Set(echo.HeaderOrigin, "https://front.example")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, "https://front.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
