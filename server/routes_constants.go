package server

import "github.com/jrsteele09/go-flexcrew-dashboard/routeguard"

// Route path constants
// All dashboard routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin  = routeguard.LoginPath
	RouteLogout = "/logout"

	// Authenticated Routes
	RouteHome           = routeguard.HomePath
	RouteProfile        = "/profile"
	RouteChangePassword = "/profile/password"
	RouteTeam           = "/team/{teamId}"
	RouteMySchedule     = "/schedule"
	RouteEmployees      = "/employees"

	// Admin Routes
	RouteAdminSchedules      = "/admin/schedules"
	RouteAdminScheduleNew    = "/admin/schedules/new"
	RouteAdminSchedule       = "/admin/schedules/{scheduleId}"
	RouteAdminScheduleEdit   = "/admin/schedules/{scheduleId}/edit"
	RouteAdminScheduleDelete = "/admin/schedules/{scheduleId}/delete"
	RouteAdminAnalytics      = "/admin/analytics"
	RouteProjects            = "/projects"
	RouteProject             = "/projects/{projectId}"

	// Operational Routes
	RouteMetrics = "/metrics"
)
