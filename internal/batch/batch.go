// Package batch runs the detection pipeline over whole photo directories
// and aggregates session reports.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/smartmap-tools/holderscan/internal/detector"
	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/utils"
)

// ItemReport is the outcome for one image file. The holder id is the file
// stem, matching how photos are keyed in the admin system exports.
type ItemReport struct {
	Path       string                   `json:"path"`
	HolderID   string                   `json:"holder_id"`
	Width      int                      `json:"width,omitempty"`
	Height     int                      `json:"height,omitempty"`
	Candidates []detector.CandidateJSON `json:"candidates,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Summary aggregates a batch run.
type Summary struct {
	TotalImages     int            `json:"total_images"`
	Failed          int            `json:"failed"`
	TotalCandidates int            `json:"total_candidates"`
	PerClass        map[string]int `json:"per_class"`
}

// Report is the full session report for one directory run.
type Report struct {
	Profile string       `json:"profile"`
	Items   []ItemReport `json:"items"`
	Summary Summary      `json:"summary"`
}

// ProgressFunc is invoked after each image finishes.
type ProgressFunc func(done, total int)

// ListImages returns the supported image files in dir, sorted by name so
// batch output order is stable.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read photo directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if utils.IsSupportedImage(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run detects over every supported image in dir using up to workers
// concurrent images. A failed image is recorded in its item report and the
// batch continues; only an unreadable directory aborts the run.
func Run(ctx context.Context, dir string, orch *pipeline.Orchestrator,
	workers int, progress ProgressFunc,
) (*Report, error) {
	files, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported images in %s", dir)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slog.Info("batch run starting", "dir", dir, "images", len(files), "workers", workers)

	items := make([]ItemReport, len(files))
	done := make(chan struct{}, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = processOne(path, orch)
			done <- struct{}{}
			return nil
		})
	}

	// Drain completions for progress reporting while workers run.
	finished := make(chan struct{})
	go func() {
		count := 0
		for range done {
			count++
			if progress != nil {
				progress(count, len(files))
			}
			if count == len(files) {
				break
			}
		}
		close(finished)
	}()

	if err := g.Wait(); err != nil {
		close(done)
		return nil, err
	}
	<-finished

	report := &Report{Profile: orch.Profile().Name, Items: items}
	report.Summary = summarize(items)
	slog.Info("batch run complete",
		"images", report.Summary.TotalImages,
		"failed", report.Summary.Failed,
		"candidates", report.Summary.TotalCandidates)
	return report, nil
}

func processOne(path string, orch *pipeline.Orchestrator) ItemReport {
	item := ItemReport{
		Path:     path,
		HolderID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Width = meta.Width
	item.Height = meta.Height

	cands := orch.Run(img)
	item.Candidates = make([]detector.CandidateJSON, 0, len(cands))
	for _, c := range cands {
		item.Candidates = append(item.Candidates, detector.CandidateJSON{
			Class:      c.Class.String(),
			X:          int(c.Box.MinX),
			Y:          int(c.Box.MinY),
			W:          int(c.Box.Width()),
			H:          int(c.Box.Height()),
			Confidence: c.Confidence,
		})
	}
	return item
}

func summarize(items []ItemReport) Summary {
	s := Summary{TotalImages: len(items), PerClass: map[string]int{}}
	for _, item := range items {
		if item.Error != "" {
			s.Failed++
			continue
		}
		s.TotalCandidates += len(item.Candidates)
		for _, c := range item.Candidates {
			s.PerClass[c.Class]++
		}
	}
	return s
}

// WriteReport writes a report as indented JSON.
func WriteReport(report *Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
