// Package actions handles submitted forms: validate against an explicit schema,
// call the backend, and report either a redirect target or an error state.
package actions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/internal/logging"
)

const (
	msgInvalidProject      = "Please correct the highlighted fields"
	msgCreateProjectFailed = "Failed to create project"
)

// ProjectCreator is the backend call behind the create-project form
type ProjectCreator interface {
	CreateProject(ctx context.Context, req apiclient.ProjectCreate) (*apiclient.Project, error)
}

// ProjectForm is the create-project form schema
type ProjectForm struct {
	Name               string `form:"name" validate:"required,max=120"`
	Description        string `form:"description" validate:"max=2000"`
	ProgramID          string `form:"program_id" validate:"required"`
	ProductionConfigID string `form:"production_config_id" validate:"required"`
}

// Result is the outcome of an action. Exactly one of Redirect and Error is set.
// Fields maps form field names to messages when validation failed.
type Result struct {
	Redirect string
	Error    string
	Fields   map[string]string
	Form     ProjectForm
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseProjectForm reads the create-project fields, trimming surrounding whitespace
func ParseProjectForm(form url.Values) ProjectForm {
	return ProjectForm{
		Name:               strings.TrimSpace(form.Get("name")),
		Description:        strings.TrimSpace(form.Get("description")),
		ProgramID:          strings.TrimSpace(form.Get("program_id")),
		ProductionConfigID: strings.TrimSpace(form.Get("production_config_id")),
	}
}

// Validate checks the form against its schema, returning per-field messages
func (f ProjectForm) Validate() map[string]string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

// CreateProject validates the submitted form and creates the project.
// Invalid input never reaches the backend.
func CreateProject(ctx context.Context, creator ProjectCreator, form url.Values) Result {
	pf := ParseProjectForm(form)
	if fields := pf.Validate(); fields != nil {
		return Result{Error: msgInvalidProject, Fields: fields, Form: pf}
	}

	project, err := creator.CreateProject(ctx, apiclient.ProjectCreate{
		Name:               pf.Name,
		Description:        pf.Description,
		ProgramID:          pf.ProgramID,
		ProductionConfigID: pf.ProductionConfigID,
	})
	if err != nil {
		logging.FromContext(ctx).Err(err).Str("name", pf.Name).Msg("create project failed")
		return Result{Error: msgCreateProjectFailed, Form: pf}
	}

	logging.FromContext(ctx).Info().Str("project_id", project.ID).Msg("project created")
	return Result{Redirect: "/projects/" + url.PathEscape(project.ID)}
}
