package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"github.com/jrsteele09/go-flexcrew-dashboard/routeguard"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ProfileView is the model for the home and profile pages
type ProfileView struct {
	Employee *apiclient.Employee
}

type TeamView struct {
	TeamID    int
	Employees []apiclient.Employee
}

type AnalyticsView struct {
	Punctuality  apiclient.PunctualityStats
	ScheduleLoad []apiclient.ScheduleLoad
}

// ScheduledDay is one working day of the weekly schedule
type ScheduledDay struct {
	Day string
	apiclient.Schedule
}

type WeeklyView struct {
	Days []ScheduledDay
}

type EmployeesView struct {
	Employees []apiclient.Employee
	Teams     []apiclient.Team
}

type ProjectView struct {
	Project     apiclient.Project
	Suggestions apiclient.AssignmentSuggestions
}

// HomeHandler renders the landing page for the signed in employee (GET /)
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := ProfileView{}
		data := s.pageData("Home", &view)

		emp, err := s.api.EmployeeByEmail(r.Context(), data.Session.UserEmail)
		if err != nil {
			s.apiFailure(w, r, "home.html", data, err)
			return
		}
		view.Employee = &emp
		s.render(w, r, http.StatusOK, "home.html", data)
	}
}

// ProfileHandler shows the employee record of the signed in user (GET /profile)
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := ProfileView{}
		data := s.pageData("Profile", &view)
		if r.URL.Query().Get("changed") == "1" {
			data.Notice = msgPasswordChanged
		}

		emp, err := s.api.EmployeeByEmail(r.Context(), data.Session.UserEmail)
		if err != nil {
			s.apiFailure(w, r, "profile.html", data, err)
			return
		}
		view.Employee = &emp
		s.render(w, r, http.StatusOK, "profile.html", data)
	}
}

// ChangePasswordHandler validates and submits a password change
// (POST /profile/password).
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		oldPassword := r.PostFormValue("oldPassword")
		newPassword := r.PostFormValue("newPassword")
		confirm := r.PostFormValue("confirmPassword")

		data := s.pageData("Profile", &ProfileView{})
		email := data.Session.UserEmail

		switch {
		case oldPassword == "":
			data.Error = msgOldPasswordMissing
		case !validNewPassword(newPassword):
			data.Error = msgPasswordRule
		case newPassword != confirm:
			data.Error = msgPasswordMismatch
		}
		if data.Error != "" {
			s.render(w, r, http.StatusBadRequest, "profile.html", data)
			return
		}

		if err := s.api.ChangePassword(r.Context(), email, oldPassword, newPassword); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("email", email).Msg("Password change failed")
			if s.sessionLost(w, r, err) {
				return
			}
			data.Error = apiMessage(err, msgPasswordFailed)
			s.render(w, r, http.StatusBadGateway, "profile.html", data)
			return
		}

		zerolog.Ctx(r.Context()).Info().Str("email", email).Msg("Password changed")
		http.Redirect(w, r, RouteProfile+"?changed=1", http.StatusSeeOther)
	}
}

// TeamHandler lists the members of a team (GET /team/{teamId})
func (s *Server) TeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teamID, ok := pathID(r, "teamId")
		if !ok {
			http.NotFound(w, r)
			return
		}

		view := TeamView{TeamID: teamID}
		data := s.pageData("Team", &view)

		var err error
		view.Employees, err = s.api.EmployeesByTeam(r.Context(), teamID)
		if err != nil {
			s.apiFailure(w, r, "team.html", data, err)
			return
		}
		s.render(w, r, http.StatusOK, "team.html", data)
	}
}

// WeeklyScheduleHandler shows the signed in employee's schedules, one per
// working day starting on Monday (GET /schedule).
func (s *Server) WeeklyScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := WeeklyView{}
		data := s.pageData("My schedule", &view)

		schedules, err := s.api.CurrentSchedules(r.Context())
		if err != nil {
			s.apiFailure(w, r, "weekly.html", data, err)
			return
		}
		for i, sch := range schedules {
			view.Days = append(view.Days, ScheduledDay{
				Day:      time.Weekday((i + 1) % 7).String(),
				Schedule: sch,
			})
		}
		s.render(w, r, http.StatusOK, "weekly.html", data)
	}
}

// EmployeesHandler lists every employee with the teams they belong to
// (GET /employees).
func (s *Server) EmployeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := EmployeesView{}
		data := s.pageData("Employees", &view)

		employees, err := s.api.Employees(r.Context())
		if err != nil {
			s.apiFailure(w, r, "employees.html", data, err)
			return
		}
		view.Employees = employees
		view.Teams = teamsOf(employees)
		s.render(w, r, http.StatusOK, "employees.html", data)
	}
}

// teamsOf returns the distinct teams of employees ordered by name
func teamsOf(employees []apiclient.Employee) []apiclient.Team {
	seen := make(map[int]bool)
	var teams []apiclient.Team
	for _, emp := range employees {
		if emp.Team == nil || seen[emp.Team.ID] {
			continue
		}
		seen[emp.Team.ID] = true
		teams = append(teams, *emp.Team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams
}

// AdminSchedulesHandler lists the work schedules (GET /admin/schedules)
func (s *Server) AdminSchedulesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedules, err := s.api.Schedules(r.Context())
		data := s.pageData("Schedules", schedules)
		switch {
		case r.URL.Query().Get("saved") == "1":
			data.Notice = msgScheduleSaved
		case r.URL.Query().Get("deleted") == "1":
			data.Notice = msgScheduleDeleted
		}
		if err != nil {
			s.apiFailure(w, r, "schedules.html", data, err)
			return
		}
		s.render(w, r, http.StatusOK, "schedules.html", data)
	}
}

// AdminAnalyticsHandler loads punctuality and schedule load side by side
// (GET /admin/analytics).
func (s *Server) AdminAnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := AnalyticsView{}
		data := s.pageData("Analytics", &view)

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			stats, err := s.api.PunctualityStats(ctx)
			view.Punctuality = stats
			return err
		})
		g.Go(func() error {
			load, err := s.api.ScheduleLoad(ctx)
			view.ScheduleLoad = load
			return err
		})
		if err := g.Wait(); err != nil {
			s.apiFailure(w, r, "analytics.html", data, err)
			return
		}
		s.render(w, r, http.StatusOK, "analytics.html", data)
	}
}

// ProjectsHandler lists projects (GET /projects)
func (s *Server) ProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := s.api.Projects(r.Context())
		data := s.pageData("Projects", projects)
		if err != nil {
			s.apiFailure(w, r, "projects.html", data, err)
			return
		}
		s.render(w, r, http.StatusOK, "projects.html", data)
	}
}

// ProjectDetailsHandler shows a project with the assignment suggestions for each
// team it requires (GET /projects/{projectId}).
func (s *Server) ProjectDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "projectId")
		if !ok {
			http.NotFound(w, r)
			return
		}

		view := ProjectView{}
		data := s.pageData("Project", &view)

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			project, err := s.api.Project(ctx, id)
			view.Project = project
			return err
		})
		g.Go(func() error {
			suggestions, err := s.api.AssignmentSuggestions(ctx, id)
			view.Suggestions = suggestions
			return err
		})
		if err := g.Wait(); err != nil {
			s.apiFailure(w, r, "project.html", data, err)
			return
		}
		s.render(w, r, http.StatusOK, "project.html", data)
	}
}

// apiFailure renders the page with the error message, or sends the browser to
// login when the failure ended the session.
func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, page string, data PageData, err error) {
	zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("API request failed")
	if s.sessionLost(w, r, err) {
		return
	}

	status := http.StatusBadGateway
	if apperrors.Is(err, apperrors.ErrNotFound) {
		status = http.StatusNotFound
	}
	data.Error = apiMessage(err, msgNoServerResponse)
	data.Data = nil
	s.render(w, r, status, page, data)
}

// sessionLost redirects to login when an unauthorized response arrived after
// the refresh failed and the session was logged out.
func (s *Server) sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apperrors.Is(err, apperrors.ErrUnauthorized) || s.sessions.IsAuthenticated() {
		return false
	}
	decision := routeguard.RequireAuthenticated(s.sessions.Snapshot(), intentFrom(r))
	http.Redirect(w, r, decision.Location(), http.StatusSeeOther)
	return true
}
