package markdown

import (
	"bytes"
	"context"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`(^|\W)__(.+?)__(\W|$)`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`(^|\W)_([^_]+)_(\W|$)`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reImage            = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrderedItem      = regexp.MustCompile(`^\d+\.\s`)
)

// Basic is a line-oriented renderer covering the markdown most blog posts
// use: ATX headings, rules, fenced code, lists, blockquotes, pipe tables,
// paragraphs and inline emphasis, code, links and images. Raw HTML is
// always escaped.
type Basic struct {
	hl *Highlighter
}

// NewBasic returns a Basic renderer. opts.AllowHTML is ignored.
func NewBasic(opts Options) *Basic {
	b := &Basic{}
	if opts.Highlight {
		b.hl = NewHighlighter(opts.style())
	}
	return b
}

// Render converts src to HTML.
func (b *Basic) Render(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w := &blockWriter{buf: &buf, hl: b.hl}
	w.run(strings.Split(src, "\n"))
	return buf.String(), nil
}

type blockKind int

const (
	blockNone blockKind = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockTable
)

var closers = map[blockKind]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
}

// blockWriter tracks the single open block; opening a different kind
// closes the current one first.
type blockWriter struct {
	buf       *bytes.Buffer
	hl        *Highlighter
	open      blockKind
	tableBody bool
}

func (w *blockWriter) close() {
	if w.open == blockTable {
		if w.tableBody {
			w.buf.WriteString("</tbody>")
		}
		w.buf.WriteString("</table>")
	} else {
		w.buf.WriteString(closers[w.open])
	}
	w.open = blockNone
	w.tableBody = false
}

// enter opens kind with tag unless it is already open, and reports
// whether a new block was started.
func (w *blockWriter) enter(kind blockKind, tag string) bool {
	if w.open == kind {
		return false
	}
	w.close()
	w.buf.WriteString(tag)
	w.open = kind
	return true
}

func (w *blockWriter) run(lines []string) {
	var (
		inFence bool
		lang    string
		code    []string
	)
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if inFence {
				w.fence(lang, code)
				inFence, code = false, nil
				continue
			}
			w.close()
			inFence = true
			lang = strings.TrimSpace(line[3:])
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}

		if strings.TrimSpace(line) == "" {
			w.close()
			continue
		}

		if level, text, ok := heading(line); ok {
			w.close()
			tag := "h" + strconv.Itoa(level)
			w.buf.WriteString("<" + tag + ">" + FormatInline(text) + "</" + tag + ">")
			continue
		}

		switch {
		case isRule(line):
			w.close()
			w.buf.WriteString("<hr/>")
		case strings.HasPrefix(line, "|"):
			w.tableRow(line)
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			w.enter(blockList, "<ul>")
			w.buf.WriteString("<li>" + FormatInline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrderedItem.MatchString(line):
			w.enter(blockOrdered, "<ol>")
			item := reOrderedItem.ReplaceAllString(line, "")
			w.buf.WriteString("<li>" + FormatInline(strings.TrimSpace(item)) + "</li>")
		case strings.HasPrefix(line, ">"):
			if !w.enter(blockQuote, "<blockquote>") {
				w.buf.WriteString(" ")
			}
			w.buf.WriteString(FormatInline(strings.TrimSpace(strings.TrimPrefix(line, ">"))))
		default:
			if !w.enter(blockPara, "<p>") {
				w.buf.WriteString("\n")
			}
			w.buf.WriteString(FormatInline(strings.TrimSpace(line)))
		}
	}
	// An unterminated fence runs to the end of the document.
	if inFence {
		w.fence(lang, code)
	}
	w.close()
}

func (w *blockWriter) fence(lang string, lines []string) {
	body := strings.Join(lines, "\n")
	if lang != "" && w.hl != nil {
		var hb bytes.Buffer
		if err := w.hl.Highlight(&hb, body+"\n", lang); err == nil {
			w.buf.Write(hb.Bytes())
			return
		}
	}
	if lang != "" {
		w.buf.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
	} else {
		w.buf.WriteString("<pre><code>")
	}
	if len(lines) > 0 {
		w.buf.WriteString(html.EscapeString(body))
		w.buf.WriteString("\n")
	}
	w.buf.WriteString("</code></pre>")
}

func (w *blockWriter) tableRow(line string) {
	if w.enter(blockTable, "<table>") {
		w.buf.WriteString("<thead><tr>")
		for _, cell := range tableCells(line) {
			w.buf.WriteString("<th>" + FormatInline(cell) + "</th>")
		}
		w.buf.WriteString("</tr></thead>")
		return
	}
	if !w.tableBody {
		w.buf.WriteString("<tbody>")
		w.tableBody = true
	}
	if isTableSeparator(line) {
		return
	}
	w.buf.WriteString("<tr>")
	for _, cell := range tableCells(line) {
		w.buf.WriteString("<td>" + FormatInline(cell) + "</td>")
	}
	w.buf.WriteString("</tr>")
}

func heading(line string) (level int, text string, ok bool) {
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, strings.TrimSpace(line[level+1:]), true
}

func isRule(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) >= 3 && strings.Trim(s, "-") == ""
}

func tableCells(line string) []string {
	line = strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	for _, cell := range tableCells(line) {
		if strings.Trim(cell, "-:") != "" {
			return false
		}
	}
	return true
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so formatting regexes never touch attribute values.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline escapes s and applies inline code, images, links, bold and
// italic formatting.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)

	// Code spans are swapped for placeholders first so nothing inside
	// backticks is formatted.
	var spans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		inner := reInlineCode.FindStringSubmatch(m)[1]
		spans = append(spans, "<code>"+inner+"</code>")
		return "\x00C" + strconv.Itoa(len(spans)-1) + "\x00"
	})

	escaped = reImage.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImage.FindStringSubmatch(m)
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		return `<img src="` + src + `" alt="` + match[1] + `"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `">` + match[1] + `</a>`
	})

	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = replaceStable(reBoldUnderscore, seg, "$1<strong>$2</strong>$3")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = replaceStable(reItalicUnderscore, seg, "$1<em>$2</em>$3")
		return seg
	})

	for i, code := range spans {
		escaped = strings.Replace(escaped, "\x00C"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

// replaceStable repeats re until s stops changing. The underscore patterns
// consume the boundary after a span, so adjacent spans need another pass.
func replaceStable(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

// SafeURL validates and escapes a URL for use in an HTML attribute.
// Relative paths, fragments and http(s)/mailto/tel URLs are allowed;
// anything else yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") || strings.HasPrefix(val, "./") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		// Bare relative path such as "images/fig.png".
		if strings.Contains(val, ":") {
			return ""
		}
		return html.EscapeString(val)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
