package main

import (
	"context"
	"io"
	"os"

	"github.com/eringen/blogfs/markdown"
)

// runRender renders a single markdown document with the configured
// renderer, which is handy for previewing a post before publishing it.
func runRender(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := markdown.New(cfg.Renderer, cfg.MarkdownOptions())
	if err != nil {
		return err
	}

	var src []byte
	if path == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}
	if err := markdown.Component(r, string(src)).Render(context.Background(), os.Stdout); err != nil {
		return err
	}
	_, err = io.WriteString(os.Stdout, "\n")
	return err
}
