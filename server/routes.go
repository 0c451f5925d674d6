package server

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(s.RequireBootstrap)...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Authenticated pages
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))
	s.RegisterRouteHandler("GET "+RouteTeam, ChainMiddleware(s.TeamHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))
	s.RegisterRouteHandler("GET "+RouteMySchedule, ChainMiddleware(s.WeeklyScheduleHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))
	s.RegisterRouteHandler("GET "+RouteEmployees, ChainMiddleware(s.EmployeesHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAuthenticated)...))

	// Admin pages
	s.RegisterRouteHandler("GET "+RouteAdminSchedules, ChainMiddleware(s.AdminSchedulesHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("POST "+RouteAdminSchedules, ChainMiddleware(s.CreateScheduleHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("GET "+RouteAdminScheduleNew, ChainMiddleware(s.NewScheduleFormHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("GET "+RouteAdminScheduleEdit, ChainMiddleware(s.EditScheduleFormHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("POST "+RouteAdminSchedule, ChainMiddleware(s.UpdateScheduleHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("POST "+RouteAdminScheduleDelete, ChainMiddleware(s.DeleteScheduleHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("GET "+RouteAdminAnalytics, ChainMiddleware(s.AdminAnalyticsHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("GET "+RouteProjects, ChainMiddleware(s.ProjectsHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))
	s.RegisterRouteHandler("GET "+RouteProject, ChainMiddleware(s.ProjectDetailsHandler(), s.HTMLMiddleWare(s.RequireBootstrap, s.RequireAdmin)...))

	if s.metrics != nil {
		s.RegisterRouteFunc("GET "+RouteMetrics, ChainMiddleware(s.metrics.Handler().ServeHTTP, s.HostGuardMiddleware))
	}
}
