package server

import (
	"reflect"
	"strings"

	"atscore/internal/types"

	"github.com/go-playground/validator/v10"
)

// DocumentsRequest carries the two raw texts every scoring endpoint needs
type DocumentsRequest struct {
	Resume         string `json:"resume" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// WeightsPayload is a user supplied readiness weighting. It is renormalized
// to sum to 1 before use.
type WeightsPayload struct {
	Semantic float64 `json:"semantic" validate:"gte=0"`
	Keyword  float64 `json:"keyword" validate:"gte=0"`
	Skill    float64 `json:"skill" validate:"gte=0"`
	Quality  float64 `json:"quality" validate:"gte=0"`
}

// AnalyzeRequest is the body of /analyze and /report
type AnalyzeRequest struct {
	DocumentsRequest
	Weights *WeightsPayload `json:"weights,omitempty"`
}

// ReadinessRequest recombines already computed scores under new weights
type ReadinessRequest struct {
	Semantic float64         `json:"semantic" validate:"gte=0,lte=100"`
	Keyword  float64         `json:"keyword" validate:"gte=0,lte=100"`
	Skill    float64         `json:"skill" validate:"gte=0,lte=100"`
	Quality  float64         `json:"quality" validate:"gte=0,lte=100"`
	Weights  *WeightsPayload `json:"weights,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// resolveWeights returns the request weights, or fallback when none were
// sent, renormalized to sum to 1.
func resolveWeights(p *WeightsPayload, fallback types.WeightVector) types.WeightVector {
	if p == nil {
		return fallback.Normalize()
	}
	return types.WeightVector{
		Semantic: p.Semantic,
		Keyword:  p.Keyword,
		Skill:    p.Skill,
		Quality:  p.Quality,
	}.Normalize()
}

func (r ReadinessRequest) dimensions() types.Dimensions {
	return types.Dimensions{
		Semantic: types.ScoreValue(r.Semantic),
		Keyword:  types.ScoreValue(r.Keyword),
		Skill:    types.ScoreValue(r.Skill),
		Quality:  types.ScoreValue(r.Quality),
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
