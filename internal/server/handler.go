package server

import (
	"context"
	"fmt"
	"net/http"

	atserrors "atscore/internal/errors"
	"atscore/internal/observability"
	"atscore/internal/scoring"

	"go.opentelemetry.io/otel/attribute"
)

// scoringOperation computes a response from a validated request
type scoringOperation[Req any] func(ctx context.Context, eng *scoring.Engine, req *Req) (any, error)

// handleJSON decodes and validates Req, runs op against the current engine
// snapshot and writes the result as JSON.
func handleJSON[Req any](s *Server, om *observability.ObservabilityManager, name string, op scoringOperation[Req]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("atscore.api").Start(r.Context(), "api."+name)
		defer span.End()

		var req Req
		if err := s.decodeRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", err.Error(), "", http.StatusBadRequest)
			return
		}

		eng := s.Engine()
		if eng == nil {
			writeErrorResponse(w, "Service not ready", "scoring engine not initialized", "", http.StatusServiceUnavailable)
			return
		}

		var result any
		err := s.metrics.TrackAnalysis(ctx, name, func(ctx context.Context) error {
			var opErr error
			result, opErr = op(ctx, eng, &req)
			return opErr
		})
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Request failed", "operation", name)
			writeErrorResponse(w, fmt.Sprintf("Failed to compute %s", name), err.Error(),
				atserrors.CodeOf(err), statusFor(err))
			return
		}

		span.SetAttributes(
			attribute.String("operation", name),
			attribute.Bool("success", true),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) analyzeOperation(ctx context.Context, eng *scoring.Engine, req *AnalyzeRequest) (any, error) {
	weights := resolveWeights(req.Weights, eng.ReadinessWeights())
	return eng.Analyze(ctx, req.Resume, req.JobDescription, weights), nil
}

func (s *Server) scoresOperation(ctx context.Context, eng *scoring.Engine, req *DocumentsRequest) (any, error) {
	return eng.ComputeScores(ctx, req.Resume, req.JobDescription), nil
}

func (s *Server) skillsOperation(_ context.Context, eng *scoring.Engine, req *DocumentsRequest) (any, error) {
	return eng.SkillGap(req.Resume, req.JobDescription), nil
}

func (s *Server) readinessOperation(_ context.Context, eng *scoring.Engine, req *ReadinessRequest) (any, error) {
	weights := resolveWeights(req.Weights, eng.ReadinessWeights())
	return eng.Readiness(req.dimensions(), weights), nil
}

// reportHandler runs a full analysis and returns it as a PDF document
func (s *Server) reportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer("atscore.api").Start(r.Context(), "api.report")
		defer span.End()

		var req AnalyzeRequest
		if err := s.decodeRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request", err.Error(), "", http.StatusBadRequest)
			return
		}

		eng := s.Engine()
		if eng == nil {
			writeErrorResponse(w, "Service not ready", "scoring engine not initialized", "", http.StatusServiceUnavailable)
			return
		}

		var (
			pdf []byte
			id  string
		)
		err := s.metrics.TrackAnalysis(ctx, "report", func(ctx context.Context) error {
			weights := resolveWeights(req.Weights, eng.ReadinessWeights())
			analysis := eng.Analyze(ctx, req.Resume, req.JobDescription, weights)
			id = analysis.ID
			var renderErr error
			pdf, renderErr = s.reports.Bytes(analysis)
			return renderErr
		})
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Report generation failed")
			writeErrorResponse(w, "Failed to generate report", err.Error(), atserrors.CodeOf(err), statusFor(err))
			return
		}

		span.SetAttributes(
			attribute.String("analysis.id", id),
			attribute.Int("report.bytes", len(pdf)),
		)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ats-report-%s.pdf"`, id))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdf); err != nil {
			s.Logger.Warn("Failed to write report response", "error", err)
		}
	}
}

// statusFor maps application errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case atserrors.IsType(err, atserrors.ErrorTypeValidation):
		return http.StatusBadRequest
	case atserrors.IsType(err, atserrors.ErrorTypeAI), atserrors.IsType(err, atserrors.ErrorTypeNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
