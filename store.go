package blogfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/blogfs/markdown"
)

const contentFile = "content.md"

// Store reads blogs from a directory tree of the form
//
//	<root>/<blog_id>/overview.json
//	<root>/<blog_id>/content.md
//	<root>/<blog_id>/<cover file>
//
// Nothing is cached: every call reads the disk, so edits made out-of-band
// show up on the next request.
type Store struct {
	root     string
	renderer markdown.Renderer

	// Strict makes a single unreadable entry fail the whole listing.
	// Otherwise the entry is reported to OnSkip and left out.
	Strict bool
	// OnSkip is called for every entry a non-strict listing leaves out.
	OnSkip func(id string, err error)
}

// NewStore returns a Store rooted at root. root must be an existing directory.
func NewStore(root string, r markdown.Renderer) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	if r == nil {
		return nil, errors.New("renderer is required")
	}
	return &Store{root: root, renderer: r}, nil
}

// Root returns the blog-folder root.
func (s *Store) Root() string {
	return s.root
}

// blogDir resolves id to its folder. Ids that are hidden, contain a path
// separator or do not name a directory are reported as ErrNotFound.
func (s *Store) blogDir(id string) (string, error) {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("blog %q: %w", id, ErrNotFound)
	}
	dir := filepath.Join(s.root, id)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("blog %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("blog %q: %w", id, ErrNotFound)
	}
	return dir, nil
}

// Metadata loads the metadata document of blog id.
func (s *Store) Metadata(id string) (Metadata, error) {
	dir, err := s.blogDir(id)
	if err != nil {
		return nil, err
	}
	meta, err := readMetadata(dir)
	if err != nil {
		return nil, fmt.Errorf("blog %q: %w", id, err)
	}
	return meta, nil
}

// Content returns the raw markdown of blog id.
func (s *Store) Content(id string) (string, error) {
	dir, err := s.blogDir(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, contentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("blog %q: %s: %w", id, contentFile, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListEntries returns every visible blog ordered newest first.
func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := d.Name()
		if strings.HasPrefix(id, ".") || !d.IsDir() {
			continue
		}
		meta, err := s.listingMetadata(id)
		if err != nil {
			if s.Strict {
				return nil, err
			}
			if s.OnSkip != nil {
				s.OnSkip(id, err)
			}
			continue
		}
		entries = append(entries, Entry{ID: id, Metadata: meta})
	}
	// os.ReadDir sorts by name, so equal dates keep folder order.
	sort.SliceStable(entries, func(i, j int) bool {
		di, _ := entries[i].Metadata.DateValue()
		dj, _ := entries[j].Metadata.DateValue()
		return newerThan(di, dj)
	})
	return entries, nil
}

// listingMetadata loads metadata for the listing. Any failure, including
// a missing document, is reported as ErrMalformedMetadata: the folder is
// visible but cannot be listed.
func (s *Store) listingMetadata(id string) (Metadata, error) {
	meta, err := readMetadata(filepath.Join(s.root, id))
	if err != nil {
		if errors.Is(err, ErrMalformedMetadata) {
			return nil, fmt.Errorf("blog %q: %w", id, err)
		}
		return nil, fmt.Errorf("blog %q: %w: %v", id, ErrMalformedMetadata, err)
	}
	if _, ok := meta.DateValue(); !ok {
		return nil, fmt.Errorf("blog %q: %w: missing date", id, ErrMalformedMetadata)
	}
	return meta, nil
}

// ListBlogs returns the metadata of every visible blog ordered newest
// first. Each document gains an "id" key holding its folder name unless
// it already defines one.
func (s *Store) ListBlogs(ctx context.Context) ([]Metadata, error) {
	entries, err := s.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	blogs := make([]Metadata, 0, len(entries))
	for _, e := range entries {
		if _, ok := e.Metadata["id"]; !ok {
			e.Metadata["id"] = e.ID
		}
		blogs = append(blogs, e.Metadata)
	}
	return blogs, nil
}

// GetBlog renders the content of blog id and returns its metadata with
// the HTML under the "content" key.
func (s *Store) GetBlog(ctx context.Context, id string) (Metadata, error) {
	src, err := s.Content(id)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("blog %q: %w: %v", id, ErrRender, err)
	}
	meta, err := s.Metadata(id)
	if err != nil {
		return nil, err
	}
	meta["content"] = html
	return meta, nil
}

// CoverPath resolves the cover image of blog id to a file path. The cover
// must be a regular file inside the blog folder.
func (s *Store) CoverPath(id string) (string, error) {
	meta, err := s.Metadata(id)
	if err != nil {
		return "", err
	}
	cover, ok := meta.Cover()
	if !ok {
		return "", fmt.Errorf("blog %q: no cover: %w", id, ErrNotFound)
	}
	dir := filepath.Join(s.root, id)
	path := filepath.Join(dir, filepath.FromSlash(cover))
	if !within(dir, path) {
		return "", fmt.Errorf("blog %q: cover %q outside blog folder: %w", id, cover, ErrNotFound)
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("blog %q: %w", id, err)
	}
	realPath, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("blog %q: cover %q: %w", id, cover, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if !within(realDir, realPath) {
		return "", fmt.Errorf("blog %q: cover %q links outside blog folder: %w", id, cover, ErrNotFound)
	}
	info, err := os.Stat(realPath)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("blog %q: cover %q: %w", id, cover, ErrNotFound)
	}
	return path, nil
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
