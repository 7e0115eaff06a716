package routes

import (
	"os"

	"github.com/labstack/echo/v4"

	"github.com/shehan8461/Gym-Management-System-sub000/biometric"
	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/handlers"
	"github.com/shehan8461/Gym-Management-System-sub000/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler()
	mem := handlers.NewMemberHandler()
	ms := handlers.NewMemberStatusHandler()
	pkg := handlers.NewPackageHandler()
	pay := handlers.NewPaymentHandler()
	att := handlers.NewAttendanceHandler()
	dev := handlers.NewDeviceHandler()
	dash := handlers.NewDashboardHandler()
	prof := handlers.NewProfileHandler()
	acct := handlers.NewAccountHandler()

	hub := handlers.NewLiveHub()
	poller := biometric.NewPoller(database.DB, biometric.NewHTTPDevice())
	chk := handlers.NewCheckinHandler(poller, hub)

	// ===== Public =====
	e.GET("/healthz", handlers.Health)
	e.POST("/auth/login", auth.Login)

	// ===== Protected =====
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	authMW := middlewares.RequireAuth(secret)

	// Staff routes (front desk)
	staff := e.Group("", authMW, middlewares.RequireRole("staff", "admin"))

	staff.GET("/members", mem.List)
	staff.GET("/members/status", ms.List)
	staff.GET("/members/:id", mem.Get)
	staff.GET("/members/:id/status", ms.Get)
	staff.POST("/members", mem.Create)
	staff.PUT("/members/:id", mem.Update)
	staff.PUT("/members/:id/package", mem.AssignPackage)
	staff.DELETE("/members/:id", mem.Delete)

	staff.GET("/packages", pkg.List)
	staff.GET("/packages/:id", pkg.Get)

	staff.GET("/members/:id/payments", pay.ListForMember)
	staff.GET("/members/:id/payments/latest", pay.LatestForMember)
	staff.POST("/payments", pay.Create)

	staff.GET("/attendance", att.List)
	staff.POST("/attendance/checkin", att.CheckIn)
	staff.POST("/attendance/:id/checkout", att.CheckOut)

	staff.POST("/checkin/listen", chk.Listen)
	staff.GET("/checkin/status", chk.Status)
	staff.GET("/checkin/live", hub.Serve)

	staff.GET("/dashboard/summary", dash.Summary)

	staff.PUT("/profile/password", prof.ChangePassword)

	// Admin routes
	admin := e.Group("/admin", authMW, middlewares.RequireRole("admin"))

	admin.POST("/packages", pkg.Create)
	admin.PUT("/packages/:id", pkg.Update)
	admin.DELETE("/packages/:id", pkg.Delete)

	admin.GET("/device", dev.Get)
	admin.PUT("/device", dev.CreateOrUpdate)
	admin.POST("/device/test", dev.TestConnection)
	admin.POST("/device/enroll/:memberId", dev.Enroll)

	admin.GET("/accounts", acct.List)
	admin.POST("/accounts", acct.Create)
	admin.POST("/accounts/:id/reset", acct.ResetPassword)
	admin.DELETE("/accounts/:id", acct.Delete)
}
