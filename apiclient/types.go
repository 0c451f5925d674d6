package apiclient

import "time"

type AuthenticationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthenticationResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

// Complete reports whether the response carries everything needed to log in
func (r AuthenticationResponse) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.Role != ""
}

type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Employee struct {
	ID            int    `json:"id"`
	Names         string `json:"names"`
	FirstSurname  string `json:"firstSurname"`
	SecondSurname string `json:"secondSurname,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role"`
	Team          *Team  `json:"team,omitempty"`
}

// FullName joins the name parts that are present
func (e Employee) FullName() string {
	name := e.Names
	for _, part := range []string{e.FirstSurname, e.SecondSurname} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// TeamName returns the team name or N/A when the employee has none
func (e Employee) TeamName() string {
	if e.Team == nil || e.Team.Name == "" {
		return "N/A"
	}
	return e.Team.Name
}

type Schedule struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	MaxEmployees     int    `json:"maxEmployees"`
	CurrentEmployees int    `json:"currentEmployees"`
}

// ScheduleInput is the body of a schedule create or update. Times are sent as
// "15:04:05-07:00".
type ScheduleInput struct {
	ID           int    `json:"id,omitempty"`
	Name         string `json:"name"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	MaxEmployees int    `json:"maxEmployees"`
}

type PunctualityStats struct {
	PunctualCount int `json:"punctualCount"`
	LateCount     int `json:"lateCount"`
	EarlyCount    int `json:"earlyCount"`
	MissedCount   int `json:"missedCount"`
	TotalRecords  int `json:"totalRecords"`
}

type ScheduleLoad struct {
	ScheduleID       int     `json:"scheduleId"`
	ScheduleName     string  `json:"scheduleName"`
	CurrentEmployees int     `json:"currentEmployees"`
	MaxEmployees     int     `json:"maxEmployees"`
	LoadPercentage   float64 `json:"loadPercentage"`
}

type Project struct {
	ProjectID    int        `json:"projectId"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status,omitempty"`
	CreationDate *time.Time `json:"creationDate,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
}

type EmployeeSuggestion struct {
	EmployeeID   int    `json:"employeeId"`
	Names        string `json:"names"`
	FirstSurname string `json:"firstSurname"`
	TeamName     string `json:"teamName"`
}

type TeamSuggestion struct {
	TeamID             int                  `json:"teamId"`
	TeamName           string               `json:"teamName"`
	RequiredCount      int                  `json:"requiredCount"`
	AssignedCount      int                  `json:"assignedCount"`
	NeededCount        int                  `json:"neededCount"`
	AssignedEmployees  []EmployeeSuggestion `json:"assignedEmployees"`
	SuggestedEmployees []EmployeeSuggestion `json:"suggestedEmployees"`
}

type AssignmentSuggestions struct {
	ProjectID       int              `json:"projectId"`
	ProjectName     string           `json:"projectName"`
	TeamSuggestions []TeamSuggestion `json:"teamSuggestions"`
}
