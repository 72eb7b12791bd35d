package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/pkg/client"
)

// course-export downloads a course's submissions through the REST API.
//
//	COURSE_API_URL=http://localhost:8080/api/v1 COURSE_API_TOKEN=... course-export -course 4 -format xlsx
func main() {
	courseID := flag.Uint("course", 0, "course id")
	format := flag.String("format", string(models.ExportZip), "zip or xlsx")
	templateID := flag.Uint("template", 0, "only submissions of this template")
	drafts := flag.Bool("drafts", false, "include drafts")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, *courseID, models.ExportFormat(*format), *templateID, *drafts, *outDir); err != nil {
		fmt.Fprintln(os.Stderr, client.UserMessage(err))
		logger.Debug("Export failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, courseID uint, format models.ExportFormat, templateID uint, drafts bool, outDir string) error {
	if courseID == 0 {
		return fmt.Errorf("-course is required")
	}
	token := os.Getenv("COURSE_API_TOKEN")
	if token == "" {
		return fmt.Errorf("COURSE_API_TOKEN is not set")
	}

	c, err := client.New(client.Config{
		Logger:           logger,
		OnSessionExpired: func() { logger.Warn("Token expired, sign in again") },
	})
	if err != nil {
		return err
	}
	if err := c.Sessions().Save(client.Session{Token: token}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := models.ExportRequest{Format: format, IncludeDraft: drafts}
	if templateID != 0 {
		req.TemplateID = &templateID
	}
	d, err := c.Export(ctx, courseID, req)
	if err != nil {
		return err
	}

	name := d.Filename
	if name == "" {
		name = fmt.Sprintf("course-%d.%s", courseID, format)
	}
	path := filepath.Join(outDir, filepath.Base(name))
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return err
	}
	logger.Info("Export written", "path", path, "bytes", len(d.Data))
	return nil
}
