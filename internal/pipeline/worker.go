package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/rechord/internal/song"
	"github.com/dgallion1/rechord/internal/songbook"
	"github.com/dgallion1/rechord/internal/source"
)

// Worker processes a single render job.
type Worker struct {
	log   *slog.Logger
	stats *RenderStats
}

func NewWorker(log *slog.Logger, stats *RenderStats) *Worker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{log: log, stats: stats}
}

// Process runs parse, layout and render for a job. Files that fail to parse
// are reported and skipped; layout or render errors fail the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	start := time.Now()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	files := job.Files()
	songs := make([]*song.Song, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			w.fail(log, job, "parsing", fmt.Errorf("cancelled: %w", err))
			return
		}
		p, err := source.ForFile(f.Name)
		if err != nil {
			log.Warn("unsupported file", "filename", f.Name, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", f.Name, err))
			continue
		}
		s, err := p.Parse(bytes.NewReader(f.Data), f.Name)
		if err != nil {
			log.Warn("parse failed", "filename", f.Name, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", f.Name, err))
			continue
		}
		songs = append(songs, s)
		job.IncrSongsLoaded()
	}
	if len(songs) == 0 {
		w.fail(log, job, "parsing", fmt.Errorf("no songs could be read"))
		return
	}

	// Phase 2: Layout
	job.SetStatus(StatusLayout, "layout")
	compiler, err := songbook.New(job.Typesetting(), log)
	if err != nil {
		w.fail(log, job, "layout", err)
		return
	}
	defer compiler.Close()

	b, err := compiler.Layout(songs)
	if err != nil {
		w.fail(log, job, "layout", err)
		return
	}
	for _, reason := range b.Skipped {
		job.AddError(reason)
	}
	job.SetLayoutResult(len(b.Skipped), len(b.Pages))

	// Phase 3: Render
	if err := ctx.Err(); err != nil {
		w.fail(log, job, "rendering", fmt.Errorf("cancelled: %w", err))
		return
	}
	job.SetStatus(StatusRendering, "rendering")
	var buf bytes.Buffer
	if err := compiler.Render(&buf, b); err != nil {
		w.fail(log, job, "rendering", err)
		return
	}
	job.SetOutput(buf.Bytes(), compiler.ContentType())
	job.SetStatus(StatusCompleted, "done")

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed)
	}
	log.Info("render completed", "songs", b.Songs, "pages", len(b.Pages), "bytes", buf.Len(), "duration", elapsed)
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("render failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}
