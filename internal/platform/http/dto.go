package http

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rgdevment/scam-registry/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type CreateReportRequest struct {
	IdentifierType  string `json:"identifier_type" validate:"required,oneof=phone upi website email other"`
	IdentifierValue string `json:"identifier_value" validate:"required,min=2,max=500"`
	Description     string `json:"description" validate:"required,min=10,max=5000"`
	ReporterName    string `json:"reporter_name" validate:"max=100"`
}

func (r *CreateReportRequest) Validate() error {
	r.IdentifierType = strings.ToLower(strings.TrimSpace(r.IdentifierType))
	r.IdentifierValue = strings.TrimSpace(r.IdentifierValue)
	r.Description = strings.TrimSpace(r.Description)
	return validationError(validate.Struct(r))
}

type CreateReportResponse struct {
	ID         string                `json:"id"`
	Message    string                `json:"message"`
	Risk       domain.RiskAssessment `json:"risk"`
	AIAnalysis domain.AIAnalysis     `json:"ai_analysis"`
}

type AnalysisRequest struct {
	Message         string `json:"message" validate:"required,min=5,max=5000"`
	IdentifierType  string `json:"identifier_type" validate:"omitempty,oneof=phone upi website email other"`
	IdentifierValue string `json:"identifier_value" validate:"max=500"`
}

func (r *AnalysisRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	r.IdentifierType = strings.ToLower(strings.TrimSpace(r.IdentifierType))
	return validationError(validate.Struct(r))
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, v.Fields[k])
	}
	return strings.Join(messages, "; ")
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
