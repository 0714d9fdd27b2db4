package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/types"
)

// TemplateResponse describes one template in GET /api/templates.
type TemplateResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// ExportCompleteEvent is the final event of an export stream.
type ExportCompleteEvent struct {
	ExportID string `json:"export_id"`
	Filename string `json:"filename"`
	Template string `json:"template"`
	FellBack bool   `json:"fell_back"`
	Pages    int    `json:"pages"`
	PDF      string `json:"pdf_base64"`
}

// readCV reads, validates and decodes a CV document body. The caller writes the error.
func (s *Server) readCV(w http.ResponseWriter, r *http.Request) (*types.CVData, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	if err := schemas.ValidateCVDocument(body); err != nil {
		return nil, err
	}
	data, err := intake.Decode(body)
	if err != nil {
		var ve *types.ValidationError
		if errors.As(err, &ve) {
			return nil, err
		}
		return nil, errInvalidJSON
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

var errInvalidJSON = errors.New("invalid JSON body")

// export runs one export and records its metrics.
func (s *Server) export(r *http.Request, data *types.CVData, onProgress export.ProgressCallback) (*export.Result, error) {
	requested := r.URL.Query().Get("template")
	start := time.Now()
	res, err := s.exporter.Export(r.Context(), export.Request{
		Data:       data,
		TemplateID: requested,
		OnProgress: onProgress,
	})

	tid, _ := export.ResolveTemplate(requested)
	if err != nil {
		s.metrics.exports.WithLabelValues(string(tid), "error").Inc()
		return nil, err
	}
	s.metrics.exports.WithLabelValues(string(res.TemplateID), "ok").Inc()
	s.metrics.exportDuration.WithLabelValues(string(res.TemplateID)).Observe(time.Since(start).Seconds())
	s.metrics.exportPages.Observe(float64(res.Pages))
	return res, nil
}

// handleExport renders the posted CV and returns the PDF as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.readCV(w, r)
	if errors.Is(err, errInvalidJSON) {
		s.invalidJSON(w, r)
		return
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.export(r, data, nil)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(res.Bytes)))
	h.Set("X-CV-Template", string(res.TemplateID))
	h.Set("X-CV-Pages", strconv.Itoa(res.Pages))
	if res.FellBack {
		h.Set("X-CV-Template-Fallback", "true")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Bytes); err != nil {
		s.logger.Warn("failed to write PDF response",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
	}
}

// handleExportStream renders the posted CV reporting progress as Server-Sent Events.
// The last event is "complete" with the base64 PDF, or "error".
func (s *Server) handleExportStream(w http.ResponseWriter, r *http.Request) {
	data, err := s.readCV(w, r)
	if errors.Is(err, errInvalidJSON) {
		s.invalidJSON(w, r)
		return
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.export(r, data, func(ev export.ProgressEvent) {
		if werr := sse.WriteEvent("progress", ev); werr != nil {
			s.logger.Debug("progress event dropped", zap.Error(werr))
		}
	})
	if err != nil {
		_, body := errorBody(err)
		body.RequestID = middleware.GetRequestID(r.Context())
		sse.WriteError(body)
		return
	}

	if err := sse.WriteEvent("complete", ExportCompleteEvent{
		ExportID: res.ID,
		Filename: res.Filename,
		Template: string(res.TemplateID),
		FellBack: res.FellBack,
		Pages:    res.Pages,
		PDF:      base64.StdEncoding.EncodeToString(res.Bytes),
	}); err != nil {
		s.logger.Warn("failed to write complete event", zap.Error(err))
	}
}

// handleSuggestions answers {titulo} with {sugerencias}. It never fails because of a collaborator:
// the service falls back to the local table and then to generic text.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req types.SuggestionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&req); err != nil {
		s.invalidJSON(w, r)
		return
	}

	sug, err := s.suggestions.Suggest(r.Context(), req.Titulo)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.metrics.suggestions.WithLabelValues(string(sug.Fuente)).Inc()
	s.jsonResponse(w, http.StatusOK, types.SuggestionResponse{Sugerencias: &sug})
}

// handleTemplates lists the registered templates.
func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	ids := rendering.TemplateIDs()
	out := make([]TemplateResponse, 0, len(ids))
	for _, id := range ids {
		st, err := rendering.Lookup(id)
		if err != nil {
			continue
		}
		out = append(out, TemplateResponse{
			ID:          string(st.ID),
			Name:        st.Name,
			Description: st.Description,
			Default:     st.ID == rendering.DefaultTemplate,
		})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"templates": len(rendering.TemplateIDs()),
	})
}
