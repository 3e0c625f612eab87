package blogfs

import (
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/eringen/blogfs/markdown"
)

// Config holds all configuration for a blogfs server. The env tags are
// read by cleanenv in cmd/blogfs; zero values are filled by setDefaults.
type Config struct {
	Addr     string `env:"BLOGFS_ADDR" env-default:":5000" env-description:"listen address"`
	BlogsDir string `env:"BLOGFS_BLOGS_DIR" env-default:"blogs" env-description:"blog-folder root"`

	Renderer       string `env:"BLOGFS_RENDERER" env-default:"goldmark" env-description:"markdown renderer: goldmark or basic"`
	Highlight      bool   `env:"BLOGFS_HIGHLIGHT" env-default:"false" env-description:"highlight fenced code blocks"`
	HighlightStyle string `env:"BLOGFS_HIGHLIGHT_STYLE" env-default:"monokai" env-description:"chroma style name"`
	AllowHTML      bool   `env:"BLOGFS_ALLOW_HTML" env-default:"false" env-description:"pass raw HTML in markdown through (goldmark)"`

	StrictListing bool     `env:"BLOGFS_STRICT_LISTING" env-default:"false" env-description:"fail the listing when any blog is unreadable"`
	LogLevel      string   `env:"BLOGFS_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn, error or off"`
	AllowOrigins  []string `env:"BLOGFS_ALLOW_ORIGINS" env-separator:"," env-description:"CORS origins, comma separated"`
	MaxCoverWidth int      `env:"BLOGFS_MAX_COVER_WIDTH" env-default:"2000" env-description:"largest ?width accepted by the cover endpoint"`
	ResizeLimit   int      `env:"BLOGFS_RESIZE_LIMIT" env-default:"30" env-description:"cover resizes allowed per client per minute"`

	Name        string `env:"BLOGFS_SITE_NAME" env-default:"Blog" env-description:"feed title"`
	URL         string `env:"BLOGFS_SITE_URL" env-default:"http://localhost:5000" env-description:"canonical site URL for feed and sitemap links"`
	Description string `env:"BLOGFS_SITE_DESCRIPTION" env-description:"feed description"`
	PostPath    string `env:"BLOGFS_POST_PATH" env-default:"blog" env-description:"path segment of post links under the site URL"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.BlogsDir == "" {
		c.BlogsDir = "blogs"
	}
	if c.Renderer == "" {
		c.Renderer = markdown.NameGoldmark
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = markdown.DefaultStyle
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxCoverWidth == 0 {
		c.MaxCoverWidth = 2000
	}
	if c.ResizeLimit == 0 {
		c.ResizeLimit = 30
	}
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000"
	}
	if c.PostPath == "" {
		c.PostPath = "blog"
	}
}

// MarkdownOptions returns the renderer options described by c.
func (c Config) MarkdownOptions() markdown.Options {
	return markdown.Options{
		Highlight: c.Highlight,
		Style:     c.HighlightStyle,
		AllowHTML: c.AllowHTML,
	}
}

func (c Config) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithRenderer replaces the renderer selected by Config.Renderer.
func WithRenderer(r markdown.Renderer) Option {
	return func(a *App) {
		a.Renderer = r
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
