package blogfs

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleList(c echo.Context) error {
	blogs, err := a.Store.ListBlogs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

func (a *App) handleBlog(c echo.Context) error {
	blog, err := a.Store.GetBlog(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": blog})
}

func (a *App) handleCover(c echo.Context) error {
	path, err := a.Store.CoverPath(c.Param("id"))
	if err != nil {
		return err
	}
	if raw := c.QueryParam("width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil || width < 1 || width > a.Config.MaxCoverWidth {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid width")
		}
		if !a.resizeLimiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many resize requests")
		}
		data, scaled, err := scaleCover(path, width)
		switch {
		case err != nil:
			c.Logger().Warnf("cover %s: serving original: %v", path, err)
		case scaled:
			return c.Blob(http.StatusOK, "image/jpeg", data)
		}
	}
	// http.ServeContent keeps a Content-Type that is already set.
	c.Response().Header().Set(echo.HeaderContentType, coverContentType(path))
	return c.File(path)
}

func (a *App) handleFeed(c echo.Context) error {
	entries, err := a.Store.ListEntries(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, entries)
}

func (a *App) handleSitemap(c echo.Context) error {
	entries, err := a.Store.ListEntries(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, entries)
}

// httpErrorHandler maps store errors onto status codes. Causes of 5xx
// responses are logged and never sent to the client.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.As(err, &he):
		code, msg = he.Code, fmt.Sprint(he.Message)
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		msg = "internal server error"
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		c.Logger().Errorf("write error response: %v", err)
	}
}
