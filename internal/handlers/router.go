package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stayease/hotel-booking-backend/internal/middleware"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/pkg/jwt"
)

// Routes bundles every handler mounted under /api/v1
type Routes struct {
	JWT      *jwt.Service
	Health   *HealthHandler
	Auth     *AuthHandler
	Rooms    *RoomHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Packages *PackageHandler
	Admin    *AdminHandler // nil when the scheduler is disabled
}

// Register mounts the API on router
func (r *Routes) Register(router *gin.Engine) {
	router.GET("/health", r.Health.Health)

	authed := middleware.AuthMiddleware(r.JWT)
	anyone := middleware.RequireRole(models.RoleUser, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", r.Auth.Register)
		auth.POST("/login", r.Auth.Login)
		auth.GET("/me", authed, anyone, r.Auth.Me)
		auth.GET("/profile", authed, anyone, r.Auth.Me)
	}

	users := v1.Group("/users", authed, admin)
	{
		users.GET("", r.Auth.ListUsers)
		users.DELETE("/:id", r.Auth.DeleteUser)
	}

	rooms := v1.Group("/rooms")
	{
		rooms.GET("", r.Rooms.ListRoomTypes)
		rooms.GET("/available", r.Rooms.ListAvailable)
		rooms.GET("/:id", r.Rooms.GetRoomType)
		rooms.POST("", authed, admin, r.Rooms.CreateRoomType)
		rooms.PATCH("/:id", authed, admin, r.Rooms.UpdateRoomType)
		rooms.DELETE("/:id", authed, admin, r.Rooms.DeleteRoomType)
		rooms.POST("/:id/rooms", authed, admin, r.Rooms.AddRoomUnits)
		rooms.PUT("/:id/rooms/:code", authed, admin, r.Rooms.UpdateRoomUnit)
		rooms.DELETE("/:id/rooms/:code", authed, admin, r.Rooms.RemoveRoomUnit)
	}

	bookings := v1.Group("/bookings", authed)
	{
		bookings.POST("", anyone, r.Bookings.CreateBooking)
		bookings.GET("/me", anyone, r.Bookings.GetMyBookings)
		bookings.GET("/:id", anyone, r.Bookings.GetBooking)
		bookings.GET("", admin, r.Bookings.ListBookings)
		bookings.PATCH("/:id", admin, r.Bookings.UpdateBookingStatus)
		bookings.POST("/:id/assign", admin, r.Bookings.AssignRoom)
	}

	payments := v1.Group("/payments")
	{
		payments.GET("/qr", r.Payments.TransferQR)
		payments.POST("", authed, anyone, r.Payments.SubmitSlip)
		payments.GET("/booking/:bookingId", authed, anyone, r.Payments.ListBookingSlips)
		payments.GET("", authed, admin, r.Payments.ListSlips)
		payments.PATCH("/:id", authed, admin, r.Payments.ReviewSlip)
	}

	packages := v1.Group("/packages")
	{
		packages.GET("", middleware.OptionalAuth(r.JWT), r.Packages.List)
		packages.POST("", authed, admin, r.Packages.Create)
		packages.PATCH("/:id", authed, admin, r.Packages.Update)
		packages.DELETE("/:id", authed, admin, r.Packages.Delete)
	}

	if r.Admin != nil {
		sweeps := v1.Group("/admin/sweeps", authed, admin)
		{
			sweeps.POST("/expire", r.Admin.RunExpireSweep)
			sweeps.POST("/release", r.Admin.RunReleaseSweep)
			sweeps.GET("/status", r.Admin.SweepStatus)
		}
	}
}
