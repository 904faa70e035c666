// Package server wires the HTTP surface: REST routes, the websocket
// endpoint, and the static upload dir.
package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/IkhsanBuuddii/moveandcleanweb/internal/auth"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/config"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/hub"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/messaging"
	appmw "github.com/IkhsanBuuddii/moveandcleanweb/internal/middleware"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/orders"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/services"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/store"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/upload"
	"github.com/IkhsanBuuddii/moveandcleanweb/internal/vendors"
)

type Deps struct {
	Cfg   *config.Config
	Store store.Store
	Hub   *hub.Hub
	Log   zerolog.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(requestLogger(d.Log))

	orderSvc := orders.NewService(d.Store, d.Hub, d.Log)
	chatSvc := messaging.NewService(d.Store, d.Hub, d.Log)

	authH := auth.NewHandler(d.Store, d.Cfg.JWT.Secret, time.Duration(d.Cfg.JWT.ExpHours)*time.Hour)
	vendorH := vendors.NewHandler(d.Store)
	serviceH := services.NewHandler(d.Store)
	orderH := orders.NewHandler(orderSvc)
	chatH := messaging.NewHandler(chatSvc)
	uploadH := upload.NewHandler(d.Cfg.Upload.Dir)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": d.Cfg.App.Name})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	api := e.Group("/api")
	api.POST("/register", authH.Register)
	api.POST("/login", authH.Login)

	api.POST("/vendors", vendorH.Create)
	api.GET("/vendors", vendorH.List)
	api.GET("/vendors/:id", vendorH.GetByID)
	api.GET("/vendors/:id/services", vendorH.ListServices)
	api.GET("/vendors/:id/orders", orderH.ListByVendor)

	api.POST("/services", serviceH.Create)
	api.GET("/services", serviceH.List)
	api.PUT("/services/:id", serviceH.Update)
	api.DELETE("/services/:id", serviceH.Delete)

	api.POST("/orders", orderH.Create)
	api.GET("/orders/order/:id", orderH.GetByID)
	api.PUT("/orders/:id", orderH.UpdateStatus)
	api.GET("/orders/:id", orderH.ListByUser) // :id is the buyer's user id
	api.GET("/orders/:id/messages", chatH.List)
	api.POST("/orders/:id/messages", chatH.Post)

	api.POST("/upload", uploadH.Image)

	protected := api.Group("", appmw.JWT(d.Cfg.JWT.Secret))
	protected.GET("/me", authH.Me)

	e.GET("/ws", d.Hub.Serve)
	e.Static("/uploads", d.Cfg.Upload.Dir)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
