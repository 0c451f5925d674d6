package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"github.com/rs/zerolog"
)

// The API stores schedule times with an offset; the form works in local clock
// time and sends UTC.
const (
	formClockLayout = "15:04"
	apiTimeSuffix   = ":00+00:00"
)

// ScheduleForm is the model of the schedule create and edit page. Fields hold
// the raw form values so a rejected submission is shown back as typed.
type ScheduleForm struct {
	ID           int
	Name         string
	StartTime    string
	EndTime      string
	MaxEmployees string
}

// Action is the URL the form posts to
func (f ScheduleForm) Action() string {
	if f.ID == 0 {
		return RouteAdminSchedules
	}
	return RouteAdminSchedules + "/" + strconv.Itoa(f.ID)
}

func scheduleFormFrom(sch apiclient.Schedule) ScheduleForm {
	return ScheduleForm{
		ID:           sch.ID,
		Name:         sch.Name,
		StartTime:    clockTime(sch.StartTime),
		EndTime:      clockTime(sch.EndTime),
		MaxEmployees: strconv.Itoa(sch.MaxEmployees),
	}
}

func scheduleFormFromRequest(r *http.Request, id int) ScheduleForm {
	return ScheduleForm{
		ID:           id,
		Name:         strings.TrimSpace(r.PostFormValue("name")),
		StartTime:    strings.TrimSpace(r.PostFormValue("startTime")),
		EndTime:      strings.TrimSpace(r.PostFormValue("endTime")),
		MaxEmployees: strings.TrimSpace(r.PostFormValue("maxEmployees")),
	}
}

// input validates the form and builds the API body. A non-empty message means
// the form was rejected.
func (f ScheduleForm) input() (apiclient.ScheduleInput, string) {
	switch {
	case f.Name == "":
		return apiclient.ScheduleInput{}, msgScheduleNameMissing
	case f.StartTime == "":
		return apiclient.ScheduleInput{}, msgStartTimeMissing
	case f.EndTime == "":
		return apiclient.ScheduleInput{}, msgEndTimeMissing
	}
	for _, t := range []string{f.StartTime, f.EndTime} {
		if _, err := time.Parse(formClockLayout, t); err != nil {
			return apiclient.ScheduleInput{}, msgTimeFormat
		}
	}
	maxEmployees, err := strconv.Atoi(f.MaxEmployees)
	if err != nil || maxEmployees <= 0 {
		return apiclient.ScheduleInput{}, msgMaxEmployees
	}

	return apiclient.ScheduleInput{
		Name:         f.Name,
		StartTime:    f.StartTime + apiTimeSuffix,
		EndTime:      f.EndTime + apiTimeSuffix,
		MaxEmployees: maxEmployees,
	}, ""
}

// clockTime trims an API time such as "8:00:00+00:00" to "08:00"
func clockTime(t string) string {
	parts := strings.Split(t, ":")
	if len(parts) < 2 {
		return ""
	}
	hour, minute := parts[0], parts[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	if len(minute) > 2 {
		minute = minute[:2]
	}
	return hour + ":" + minute
}

// NewScheduleFormHandler shows an empty schedule form (GET /admin/schedules/new)
func (s *Server) NewScheduleFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "schedule_form.html", s.pageData("New schedule", ScheduleForm{MaxEmployees: "1"}))
	}
}

// EditScheduleFormHandler shows the form filled with a stored schedule
// (GET /admin/schedules/{scheduleId}/edit).
func (s *Server) EditScheduleFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "scheduleId")
		if !ok {
			http.NotFound(w, r)
			return
		}

		data := s.pageData("Edit schedule", nil)
		sch, err := s.api.Schedule(r.Context(), id)
		if err != nil {
			s.apiFailure(w, r, "schedule_form.html", data, err)
			return
		}
		data.Data = scheduleFormFrom(sch)
		s.render(w, r, http.StatusOK, "schedule_form.html", data)
	}
}

// CreateScheduleHandler adds a schedule (POST /admin/schedules)
func (s *Server) CreateScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.saveSchedule(w, r, 0, "New schedule", func(in apiclient.ScheduleInput) error {
			_, err := s.api.CreateSchedule(r.Context(), in)
			return err
		})
	}
}

// UpdateScheduleHandler replaces a schedule (POST /admin/schedules/{scheduleId})
func (s *Server) UpdateScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "scheduleId")
		if !ok {
			http.NotFound(w, r)
			return
		}
		s.saveSchedule(w, r, id, "Edit schedule", func(in apiclient.ScheduleInput) error {
			return s.api.UpdateSchedule(r.Context(), id, in)
		})
	}
}

func (s *Server) saveSchedule(w http.ResponseWriter, r *http.Request, id int, title string, save func(apiclient.ScheduleInput) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := scheduleFormFromRequest(r, id)
	data := s.pageData(title, form)
	in, problem := form.input()
	if problem != "" {
		data.Error = problem
		s.render(w, r, http.StatusBadRequest, "schedule_form.html", data)
		return
	}

	if err := save(in); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("schedule_id", id).Msg("Saving schedule failed")
		if s.sessionLost(w, r, err) {
			return
		}
		status := http.StatusBadGateway
		if apperrors.Is(err, apperrors.ErrNotFound) {
			status = http.StatusNotFound
		}
		data.Error = apiMessage(err, msgScheduleSaveFailed)
		s.render(w, r, status, "schedule_form.html", data)
		return
	}

	zerolog.Ctx(r.Context()).Info().Int("schedule_id", id).Str("name", in.Name).Msg("Schedule saved")
	http.Redirect(w, r, RouteAdminSchedules+"?saved=1", http.StatusSeeOther)
}

// DeleteScheduleHandler removes a schedule (POST /admin/schedules/{scheduleId}/delete)
func (s *Server) DeleteScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "scheduleId")
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := s.api.DeleteSchedule(r.Context(), id); err != nil {
			data := s.pageData("Schedules", nil)
			s.apiFailure(w, r, "schedules.html", data, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Int("schedule_id", id).Msg("Schedule deleted")
		http.Redirect(w, r, RouteAdminSchedules+"?deleted=1", http.StatusSeeOther)
	}
}

// pathID reads a positive integer path value
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
