package router

import (
	"net/http"

	"attendsync/app/controllers"
	"attendsync/app/middleware"
)

func NewRouter(
	authCtrl *controllers.AuthController,
	rosterCtrl *controllers.RosterController,
	deviceCtrl *controllers.DeviceController,
	terminalCtrl *controllers.TerminalController,
	healthCtrl *controllers.HealthController,
	scheduleCtrl *controllers.ScheduleController,
	mw *middleware.Auth,
) http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("/login", authCtrl.Login)

	// terminal-facing consumer surface
	mux.Handle("/terminal/heartbeat", mw.RequireAuth(http.HandlerFunc(terminalCtrl.Heartbeat)))
	mux.Handle("/terminal/commands", mw.RequireAuth(http.HandlerFunc(terminalCtrl.Pending)))
	mux.Handle("/terminal/commands/complete", mw.RequireAuth(http.HandlerFunc(terminalCtrl.Complete)))
	mux.Handle("/terminal/commands/retry", mw.RequireAuth(http.HandlerFunc(terminalCtrl.Retry)))

	// operator surface
	mux.Handle("/admin/users", mw.RequireAdmin(http.HandlerFunc(authCtrl.CreateUser)))
	mux.Handle("/admin/devices", mw.RequireAdmin(http.HandlerFunc(deviceCtrl.List)))
	mux.Handle("/admin/devices/register", mw.RequireAdmin(http.HandlerFunc(deviceCtrl.Register)))
	mux.Handle("/admin/employees", mw.RequireAdmin(http.HandlerFunc(rosterCtrl.ListEmployees)))
	mux.Handle("/admin/employees/create", mw.RequireAdmin(http.HandlerFunc(rosterCtrl.CreateEmployee)))
	mux.Handle("/admin/roster/transfer", mw.RequireAdmin(http.HandlerFunc(rosterCtrl.Transfer)))
	mux.Handle("/admin/roster/resign", mw.RequireAdmin(http.HandlerFunc(rosterCtrl.Resign)))
	mux.Handle("/admin/roster/rehire", mw.RequireAdmin(http.HandlerFunc(rosterCtrl.Rehire)))
	mux.Handle("/admin/health", mw.RequireAdmin(http.HandlerFunc(healthCtrl.Get)))
	mux.Handle("/admin/alerts", mw.RequireAdmin(http.HandlerFunc(healthCtrl.CurrentAlerts)))
	mux.Handle("/admin/commands/queue", mw.RequireAdmin(http.HandlerFunc(terminalCtrl.Queue)))
	mux.Handle("/admin/jobs", mw.RequireAdmin(http.HandlerFunc(scheduleCtrl.Jobs)))
	mux.Handle("/admin/jobs/item", mw.RequireAdmin(http.HandlerFunc(scheduleCtrl.Job)))
	mux.Handle("/admin/jobs/history", mw.RequireAdmin(http.HandlerFunc(scheduleCtrl.History)))

	return mux
}
