package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/techtech0521/schedule-timeline/internal/capture"
	"github.com/techtech0521/schedule-timeline/internal/config"
	"github.com/techtech0521/schedule-timeline/internal/convert"
	appLog "github.com/techtech0521/schedule-timeline/internal/log"
	"github.com/techtech0521/schedule-timeline/internal/render"
	"github.com/techtech0521/schedule-timeline/internal/web"
)

// pipeline captures the served timeline page and packs it into panel
// planes under cfg.OutputDir:
//
//	preview.png  full-color capture
//	black.bin    packed black plane
//	red.bin      packed red plane
type pipeline struct {
	cfg    *config.Config
	server *web.Server
	dump   bool
}

func (p *pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.server.Invalidate()

	out := p.cfg.OutputDir
	png, err := capture.CapturePNG(ctx, capture.Options{
		URL:        captureURL(p.cfg),
		OutputPath: filepath.Join(out, "preview.png"),
		Width:      p.cfg.Capture.Width,
		Height:     p.cfg.Capture.Height,
		Timeout:    time.Duration(p.cfg.Capture.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}

	img, err := convert.DecodeNRGBA(png)
	if err != nil {
		return err
	}
	black, red, err := convert.PackNRGBA(convert.Orient(img))
	if err != nil {
		return err
	}
	if err := writeFiles(out, map[string][]byte{"black.bin": black, "red.bin": red}); err != nil {
		return err
	}

	if p.dump {
		if err := p.dumpView(ctx, out); err != nil {
			return err
		}
	}

	appLog.Info("capture pipeline done", "output_dir", out, "took", time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *pipeline) dumpView(ctx context.Context, dir string) error {
	v := p.server.View(ctx)

	var page bytes.Buffer
	if err := render.HTML(&page, v); err != nil {
		return err
	}
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFiles(dir, map[string][]byte{"timeline.html": page.Bytes(), "timeline.json": js})
}

func writeFiles(dir string, files map[string][]byte) error {
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// captureURL points Chromium at the local timeline page. Wildcard listen
// hosts are reached over loopback; Basic Auth credentials ride in the URL.
func captureURL(cfg *config.Config) string {
	host, port, err := net.SplitHostPort(cfg.Listen)
	if err != nil {
		host, port = cfg.Listen, "80"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/timeline"}
	if cfg.BasicAuth != nil && cfg.BasicAuth.Username != "" && cfg.BasicAuth.Password != "" {
		u.User = url.UserPassword(cfg.BasicAuth.Username, cfg.BasicAuth.Password)
	}
	return u.String()
}
