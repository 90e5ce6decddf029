package server

import (
	"net/http"

	"github.com/jrsteele09/aicp-web/actions"
	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/hooks"
)

// NewProjectPageData is the model of the new-project form
type NewProjectPageData struct {
	Form   actions.ProjectForm
	Fields map[string]string
	Error  string
}

// SelectData is the model of the programs and production config selects
type SelectData[T any] struct {
	hooks.Result[T]
	Selected string
}

// ProjectViewData is the model of the project view fragment
type ProjectViewData struct {
	ID      string
	Project hooks.Result[*apiclient.Project]
}

func (s *Server) NewProjectPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, "new_project.html", http.StatusOK, s.pageData(r, NewProjectPageData{}))
	}
}

// CreateProjectHandler runs the create-project action (POST /projects)
func (s *Server) CreateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		res := actions.CreateProject(r.Context(), s.apiFor(r), r.PostForm)
		if res.Redirect != "" {
			s.hooksFor(r).InvalidateProjects()
			redirectSuccess(w, r, res.Redirect)
			return
		}

		status := http.StatusBadGateway
		if res.Fields != nil {
			status = http.StatusUnprocessableEntity
		}
		data := NewProjectPageData{Form: res.Form, Fields: res.Fields, Error: res.Error}
		s.renderPage(w, r, "new_project.html", status, s.pageData(r, data))
	}
}

func (s *Server) ProjectPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		data := ProjectViewData{ID: id, Project: s.hooksFor(r).UseProject(r.Context(), id)}
		s.renderPage(w, r, "project.html", http.StatusOK, s.pageData(r, data))
	}
}

// ProjectFragmentHandler re-renders the project view for htmx polling
func (s *Server) ProjectFragmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.renderFragment(w, r, "project_view", ProjectViewData{ID: id, Project: s.hooksFor(r).UseProject(r.Context(), id)})
	}
}

func (s *Server) ProgramsFragmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := SelectData[[]apiclient.Program]{
			Result:   s.hooksFor(r).UseAvailablePrograms(r.Context()),
			Selected: r.URL.Query().Get("selected"),
		}
		s.renderFragment(w, r, "programs_select", data)
	}
}

func (s *Server) ProductionConfigsFragmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := SelectData[[]apiclient.ProductionConfig]{
			Result:   s.hooksFor(r).UseProductionConfigs(r.Context()),
			Selected: r.URL.Query().Get("selected"),
		}
		s.renderFragment(w, r, "production_configs_select", data)
	}
}
