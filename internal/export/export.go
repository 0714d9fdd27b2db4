// Package export turns CV data into a finished PDF: it copies the input,
// picks the template, sets document metadata, lays the pages out and names
// the file.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/pdfdoc"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

// Product identity written into every document.
const (
	Creator  = "CV Generator Pro"
	Producer = "CV Generator Pro - Generador de CV Profesional"
)

// DefaultMaxContentBytes bounds the JSON size of the CV text handed to the
// layout engine. The photo is not counted.
const DefaultMaxContentBytes = 1 << 20

// ProgressEvent reports a stage of one export.
type ProgressEvent struct {
	ExportID string `json:"export_id"`
	Step     string `json:"step"`
	Message  string `json:"message"`
}

// ProgressCallback is called as an export moves through its stages.
type ProgressCallback func(event ProgressEvent)

// Request is one export call.
type Request struct {
	Data       *types.CVData
	TemplateID string
	// OptionalSections and ActiveSections override the values carried in
	// Data when non-nil.
	OptionalSections map[types.SectionID]map[string]string
	ActiveSections   []types.SectionID
	// OnProgress receives this request's events in addition to the
	// Exporter's callback.
	OnProgress ProgressCallback
}

// Result is a finished document.
type Result struct {
	ID         string
	Filename   string
	TemplateID rendering.TemplateID
	FellBack   bool // requested template was unknown
	Bytes      []byte
	Pages      int
	Report     *rendering.Report
	CreatedAt  time.Time
}

// SaveTo writes the document into dir under its filename and returns the path.
func (r *Result) SaveTo(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, r.Filename)
	if err := os.WriteFile(path, r.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Exporter renders CVs. The zero value is not usable; call New.
type Exporter struct {
	Measurer        layout.Measurer
	Logger          *zap.Logger
	Now             func() time.Time
	OnProgress      ProgressCallback
	MaxContentBytes int
}

// New returns an Exporter measuring text with the PDF core fonts.
func New(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		Measurer:        pdfdoc.NewMeasurer(),
		Logger:          logger,
		Now:             time.Now,
		MaxContentBytes: DefaultMaxContentBytes,
	}
}

// ResolveTemplate returns the registered template for id, or the default
// one when id is unknown.
func ResolveTemplate(id string) (rendering.TemplateID, bool) {
	tid := rendering.TemplateID(strings.ToLower(strings.TrimSpace(id)))
	if _, err := rendering.Lookup(tid); err != nil {
		return rendering.DefaultTemplate, true
	}
	return tid, false
}

// BuildMetadata returns the document info for data rendered with templateID.
func BuildMetadata(p types.Personal, templateID rendering.TemplateID, now time.Time) canvas.Metadata {
	name := strings.TrimSpace(p.FullName)
	title := strings.TrimSpace(p.DesiredTitle)
	return canvas.Metadata{
		Title:        "CV - " + orDefault(name, "Curriculum Vitae"),
		Subject:      "Curriculum Vitae de " + orDefault(name, "Profesional"),
		Author:       orDefault(name, "Usuario"),
		Creator:      Creator,
		Producer:     Producer,
		Keywords:     fmt.Sprintf("cv, curriculum, %s, %s", orDefault(title, "profesional"), templateID),
		CreationDate: now,
	}
}

// Export renders one document. Every failure, panics included, comes back
// as an *ExportError; the technical detail is logged.
func (e *Exporter) Export(ctx context.Context, req Request) (res *Result, err error) {
	id := uuid.New().String()
	log := e.logger().With(zap.String("export_id", id), zap.String("requested_template", req.TemplateID))

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, Classify(panicError(r))
		}
		if err != nil {
			ee := Classify(err)
			log.Error("export failed", zap.String("kind", string(ee.Kind)), zap.Error(ee.Cause))
			err = ee
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Data == nil {
		return nil, &ExportError{Kind: KindLayout, Message: "no CV data"}
	}

	e.progress(req, id, "prepare", "Preparando datos")
	data := req.Data.Clone()
	if req.OptionalSections != nil {
		data.OptionalSections = types.CloneOptionalSections(req.OptionalSections)
	}
	if req.ActiveSections != nil {
		data.ActiveSections = append([]types.SectionID(nil), req.ActiveSections...)
	}
	if err := intake.CheckEmbeddedPhoto(data); err != nil {
		log.Warn("profile photo dropped", zap.Error(err))
		data.ProfilePhoto = nil
	}
	if err := e.checkSize(data); err != nil {
		return nil, err
	}

	tid, fellBack := ResolveTemplate(req.TemplateID)
	if fellBack {
		log.Info("unknown template, using default", zap.String("template", string(tid)))
	}
	m := e.Measurer
	if m == nil {
		m = pdfdoc.NewMeasurer()
	}
	engine, err := rendering.NewEngine(tid, m, log)
	if err != nil {
		return nil, err
	}

	now := e.now()
	doc := canvas.NewDocument(canvas.A4())
	doc.Metadata = BuildMetadata(data.Personal, tid, now)

	e.progress(req, id, "render", "Generando PDF")
	report, err := engine.Render(doc, data, rendering.Options{
		OptionalSections: data.OptionalSections,
		ActiveSections:   data.ActiveSections,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.progress(req, id, "write", "Escribiendo documento")
	var buf bytes.Buffer
	if err := pdfdoc.Write(&buf, doc); err != nil {
		return nil, err
	}

	res = &Result{
		ID:         id,
		Filename:   Filename(data.Personal.FullName, string(tid), now),
		TemplateID: tid,
		FellBack:   fellBack,
		Bytes:      buf.Bytes(),
		Pages:      report.Pages,
		Report:     report,
		CreatedAt:  now,
	}
	log.Info("export finished",
		zap.String("template", string(tid)),
		zap.String("filename", res.Filename),
		zap.Int("pages", res.Pages),
		zap.Int("bytes", len(res.Bytes)),
		zap.Strings("skipped", report.Skipped))
	e.progress(req, id, "done", res.Filename)
	return res, nil
}

// ExportAll renders req once per registered template, concurrently. Results
// follow rendering.TemplateIDs order; the first failure cancels the rest.
func (e *Exporter) ExportAll(ctx context.Context, req Request) ([]*Result, error) {
	ids := rendering.TemplateIDs()
	results := make([]*Result, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			r := req
			r.TemplateID = string(id)
			res, err := e.Export(gctx, r)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) checkSize(data *types.CVData) error {
	limit := e.MaxContentBytes
	if limit <= 0 {
		return nil
	}
	text := *data
	text.ProfilePhoto = nil
	b, err := json.Marshal(&text)
	if err != nil {
		return &ExportError{Kind: KindLayout, Message: "unencodable CV data", Cause: err}
	}
	if len(b) > limit {
		return &ContentTooLargeError{Size: len(b), Limit: limit}
	}
	return nil
}

func (e *Exporter) progress(req Request, id, step, msg string) {
	ev := ProgressEvent{ExportID: id, Step: step, Message: msg}
	if e.OnProgress != nil {
		e.OnProgress(ev)
	}
	if req.OnProgress != nil {
		req.OnProgress(ev)
	}
}

func (e *Exporter) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
