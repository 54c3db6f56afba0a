// Package service orchestrates per-page extraction and the bounded multi-page
// worker, and owns run persistence.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hilyte/internal/config"
	"hilyte/internal/domain"
	"hilyte/internal/extract"
	"hilyte/internal/geometry"
	"hilyte/internal/pipeline"
	"hilyte/internal/port"
	"hilyte/internal/taxonomy"
)

// ExtractionService runs the full extraction chain for pages and drawings:
// OCR, geometry, pattern extraction, the analysis pipeline, classification,
// and consolidation.
type ExtractionService struct {
	ocr       port.OCRAdapter
	store     *geometry.Store
	tables    *geometry.Reconstructor
	extractor *extract.Extractor
	pipeline  *pipeline.Pipeline
	engine    *taxonomy.Engine

	runs    port.RunRepository
	storage port.ObjectStorage
	bucket  string

	concurrency        int
	pageTimeout        time.Duration
	minTableConfidence float64
	runGapPx           float64
}

// NewExtractionService wires the extraction chain. The geometry thresholds
// come from config; the division table is injected, never global.
func NewExtractionService(
	cfg *config.Config,
	ocr port.OCRAdapter,
	classifier port.Classifier,
	table taxonomy.Table,
	runs port.RunRepository,
	storage port.ObjectStorage,
) *ExtractionService {
	geoCfg := geometry.Config{
		RowTolerancePx:    cfg.Geometry.RowTolerancePx,
		MinColumnWidthPx:  cfg.Geometry.MinColumnWidthPx,
		AssignTolerancePx: cfg.Geometry.AssignTolerancePx,
		MinTokenLength:    cfg.Geometry.MinTokenLength,
	}
	return &ExtractionService{
		ocr:                ocr,
		store:              geometry.NewStore(geoCfg),
		tables:             geometry.NewReconstructor(geoCfg),
		extractor:          extract.NewExtractor(extract.Catalog()),
		pipeline:           pipeline.New(classifier),
		engine:             taxonomy.NewEngine(classifier, table),
		runs:               runs,
		storage:            storage,
		bucket:             cfg.S3.Bucket,
		concurrency:        cfg.Worker.Concurrency,
		pageTimeout:        time.Duration(cfg.Worker.PageTimeoutSecs) * time.Second,
		minTableConfidence: cfg.Geometry.MinTableConfidence,
		runGapPx:           cfg.Geometry.RowTolerancePx * 5,
	}
}

// ProcessPage runs the full chain for one page image. An OCR failure or an
// empty zero-confidence result yields an empty bundle, not an error; the only
// error returned is context cancellation.
func (s *ExtractionService) ProcessPage(ctx context.Context, page int, imageBytes []byte) (*domain.PageBundle, error) {
	ocrRes, err := s.ocr.Extract(ctx, imageBytes)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("service: OCR failed on page %d, yielding empty results: %v", page, err)
		return emptyBundle(page), nil
	}
	if ocrRes.Confidence == 0 && ocrRes.Text == "" {
		return emptyBundle(page), nil
	}

	tokens := s.store.Ingest(page, ocrRes.Tokens)
	tables := s.reconstructTables(tokens)
	items := s.extractor.Extract(page, ocrRes.Text, ocrRes.Confidence)
	for i := range items {
		if region, ok := s.store.Locate(tokens, items[i].RawName); ok {
			items[i].BoundingRegion = region
		}
	}

	analysis, err := s.pipeline.Run(ctx, page, ocrRes.Text)
	if err != nil {
		return nil, err
	}

	accepted, low, err := s.engine.ClassifyPage(ctx, items, imageBytes)
	if err != nil {
		return nil, err
	}
	accepted = taxonomy.Annotate(accepted)

	return &domain.PageBundle{
		Page:            page,
		Tables:          tables,
		Items:           accepted,
		LowConfidence:   low,
		Requirements:    analysis.Requirements,
		ComplianceItems: analysis.ComplianceItems,
		Clusters:        analysis.Clusters,
		Traceability:    analysis.Traceability,
		Summary:         analysis.Summary,
	}, nil
}

// ProcessStoredPage fetches a rendered page image from object storage and
// processes it.
func (s *ExtractionService) ProcessStoredPage(ctx context.Context, page int, imageKey string) (*domain.PageBundle, error) {
	imageBytes, err := s.storage.Download(ctx, s.bucket, imageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPageImageNotFound, imageKey)
	}
	return s.ProcessPage(ctx, page, imageBytes)
}

// ProcessDrawing processes all pages of a drawing concurrently (bounded by
// the configured worker limit), then runs the single-threaded consolidation
// pass, persists the result, and uploads the bundle to object storage.
// A drawing with zero pages is rejected before any work starts.
func (s *ExtractionService) ProcessDrawing(ctx context.Context, drawingID uuid.UUID, pageKeys []string) (*domain.DrawingResult, error) {
	if len(pageKeys) == 0 {
		return nil, domain.ErrNoPages
	}

	run := &domain.ExtractionRun{
		ID:        uuid.New(),
		DrawingID: drawingID,
		Status:    domain.RunStatusRunning,
		PageCount: len(pageKeys),
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	bundles := make([]*domain.PageBundle, len(pageKeys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, key := range pageKeys {
		g.Go(func() error {
			pageCtx := gctx
			var cancel context.CancelFunc
			if s.pageTimeout > 0 {
				pageCtx, cancel = context.WithTimeout(gctx, s.pageTimeout)
				defer cancel()
			}

			page := i + 1
			bundle, err := s.ProcessStoredPage(pageCtx, page, key)
			if err != nil {
				// A missing page image degrades to an empty page; only
				// cancellation of the whole run propagates.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("service: page %d failed, yielding empty results: %v", page, err)
				bundle = emptyBundle(page)
			}
			bundles[i] = bundle
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ferr := s.runs.Finish(ctx, run.ID, domain.RunStatusFailed, 0, err.Error()); ferr != nil {
			log.Printf("service: marking run %s failed: %v", run.ID, ferr)
		}
		return nil, err
	}

	result := s.consolidate(run.ID, bundles)

	stored := storedItems(run.ID, bundles)
	if err := s.runs.SaveItems(ctx, stored); err != nil {
		log.Printf("service: saving %d items for run %s: %v", len(stored), run.ID, err)
	}
	if err := s.runs.Finish(ctx, run.ID, domain.RunStatusCompleted, len(result.UniqueItems), ""); err != nil {
		log.Printf("service: finishing run %s: %v", run.ID, err)
	}

	s.uploadResult(ctx, result)
	return result, nil
}

// Run returns one persisted extraction run.
func (s *ExtractionService) Run(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	return s.runs.GetByID(ctx, id)
}

// ResultBundle fetches the consolidated drawing result persisted to object
// storage when the run finished.
func (s *ExtractionService) ResultBundle(ctx context.Context, id uuid.UUID) (*domain.DrawingResult, error) {
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunStatusCompleted {
		return nil, domain.ErrRunNotFinished
	}

	body, err := s.storage.Download(ctx, s.bucket, fmt.Sprintf("runs/%s/result.json", id))
	if err != nil {
		return nil, fmt.Errorf("downloading result bundle: %w", err)
	}
	var result domain.DrawingResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling result bundle: %w", err)
	}
	return &result, nil
}

// RunItems returns the persisted items of one run.
func (s *ExtractionService) RunItems(ctx context.Context, id uuid.UUID) ([]domain.StoredItem, error) {
	return s.runs.ListItems(ctx, id)
}

// reconstructTables splits the page's tokens into contiguous vertical runs
// and attempts a table reconstruction per run, keeping candidates above the
// confidence floor.
func (s *ExtractionService) reconstructTables(tokens []domain.PositionedToken) []domain.TableCandidate {
	var out []domain.TableCandidate
	for _, run := range s.tokenRuns(tokens) {
		candidate, ok := s.tables.Reconstruct(run)
		if ok && candidate.Confidence >= s.minTableConfidence {
			out = append(out, *candidate)
		}
	}
	return out
}

// tokenRuns groups tokens into vertically contiguous runs, splitting where
// the y gap between successive tokens exceeds five row tolerances.
func (s *ExtractionService) tokenRuns(tokens []domain.PositionedToken) [][]domain.PositionedToken {
	if len(tokens) == 0 {
		return nil
	}
	sorted := make([]domain.PositionedToken, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var runs [][]domain.PositionedToken
	current := []domain.PositionedToken{sorted[0]}
	for _, tok := range sorted[1:] {
		prev := current[len(current)-1]
		if tok.Y-prev.Y > s.runGapPx {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, tok)
	}
	runs = append(runs, current)
	return runs
}

// consolidate builds the cross-page view from the finished page bundles.
func (s *ExtractionService) consolidate(runID uuid.UUID, bundles []*domain.PageBundle) *domain.DrawingResult {
	result := &domain.DrawingResult{RunID: runID}
	var allItems []domain.ClassifiedItem
	for _, b := range bundles {
		result.Pages = append(result.Pages, *b)
		allItems = append(allItems, b.Items...)
	}

	c := taxonomy.Consolidate(allItems)
	result.CrossReferences = c.CrossReferences
	result.UniqueItems = c.UniqueItems
	result.DivisionBreakdown = c.DivisionBreakdown
	return result
}

func (s *ExtractionService) uploadResult(ctx context.Context, result *domain.DrawingResult) {
	body, err := json.Marshal(result)
	if err != nil {
		log.Printf("service: marshaling result for run %s: %v", result.RunID, err)
		return
	}
	key := fmt.Sprintf("runs/%s/result.json", result.RunID)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
	}); err != nil {
		log.Printf("service: uploading result for run %s: %v", result.RunID, err)
	}
}

// storedItems flattens accepted and low-confidence items into persisted rows.
// Low-confidence items are stored flagged for review, never dropped.
func storedItems(runID uuid.UUID, bundles []*domain.PageBundle) []domain.StoredItem {
	now := time.Now().UTC()
	var out []domain.StoredItem
	add := func(ci domain.ClassifiedItem, needsReview bool) {
		out = append(out, domain.StoredItem{
			ID:           uuid.New(),
			RunID:        runID,
			Page:         ci.Item.SourcePage,
			Name:         ci.Item.RawName,
			Category:     ci.Item.Category,
			DivisionCode: ci.DivisionCode,
			CalloutID:    ci.CalloutID,
			Confidence:   ci.Confidence,
			NeedsReview:  needsReview,
			RegionX:      ci.AnnotationCoordinates.X,
			RegionY:      ci.AnnotationCoordinates.Y,
			RegionW:      ci.AnnotationCoordinates.Width,
			RegionH:      ci.AnnotationCoordinates.Height,
			CreatedAt:    now,
		})
	}
	for _, b := range bundles {
		for _, ci := range b.Items {
			add(ci, ci.Item.NeedsReview)
		}
		for _, ci := range b.LowConfidence {
			add(ci, true)
		}
	}
	return out
}

func emptyBundle(page int) *domain.PageBundle {
	return &domain.PageBundle{
		Page: page,
		Summary: domain.AnalysisSummary{
			DocumentComplexity: domain.ComplexityLow,
		},
	}
}
