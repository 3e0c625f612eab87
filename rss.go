package blogfs

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, entries []Entry) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pubDate := ""
		if v, ok := e.Metadata.DateValue(); ok {
			if t, ok := parseDate(v); ok {
				pubDate = t.Format(time.RFC1123Z)
			}
		}
		// The body is only needed when the metadata carries no summary.
		content := ""
		if e.Metadata.Summary() == "" {
			src, err := a.Store.Content(e.ID)
			if err != nil {
				c.Logger().Warnf("feed: blog %q: %v", e.ID, err)
			}
			content = src
		}
		link := BuildURL(base, a.Config.PostPath, e.ID)
		items = append(items, rssItem{
			Title:       e.Metadata.Title(),
			Link:        link,
			Description: summarize(e.Metadata, content),
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
