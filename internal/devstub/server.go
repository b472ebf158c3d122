package devstub

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Server wraps the echo instance serving the stub surface.
type Server struct {
	e      *echo.Echo
	store  *Store
	jwtKey []byte
	log    zerolog.Logger
}

// New builds a fully routed stub server around the given store.
func New(store *Store, jwtKey string, logger zerolog.Logger) *Server {
	s := &Server{
		e:      echo.New(),
		store:  store,
		jwtKey: []byte(jwtKey),
		log:    logger,
	}
	s.e.HideBanner = true
	s.e.HidePort = true

	// Match the backend's error envelope so clients read the same field
	// against the stub as against production.
	s.e.HTTPErrorHandler = detailErrorHandler(logger)

	s.e.Use(recovery(logger))
	s.e.Use(requestID())
	s.e.Use(requestLogger(logger))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.e

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/api/auth/login", s.handleLogin)
	e.POST("/api/auth/bootstrap", s.handleBootstrap)

	api := e.Group("/api", s.requireAuth())

	api.GET("/auth/me", s.handleMe)

	api.GET("/patients", s.handleListPatients)
	api.POST("/patients", s.handleCreatePatient)
	api.GET("/patients/:id/visits", s.handlePatientVisits)

	api.POST("/visits", s.handleCreateVisit)

	api.GET("/prescriptions/patient/:id", s.handlePrescriptionsByPatient)
	api.POST("/prescriptions", s.handleCreatePrescription)
	api.POST("/prescriptions/:id/export", s.handleExportPrescription)
	api.GET("/prescriptions/:id/pdf", s.handlePrescriptionPDF)
	api.GET("/prescriptions/:id/qr.png", s.handlePrescriptionQR)

	api.POST("/pos/checkout", s.handleCheckout)

	api.GET("/inventory/spectacles", s.handleListSpectacles)
	api.GET("/inventory/spectacles/:id", s.handleGetSpectacle)
	api.POST("/inventory/upload-csv", s.handleUploadCSV)
	api.POST("/inventory/upload", s.handleUpload)
	api.POST("/inventory/upload-image", s.handleUploadImage)
	api.POST("/inventory/analyze-image", s.handleAnalyzeImage)

	api.GET("/dashboard/stats", s.handleDashboardStats)
	api.GET("/dashboard/operations", s.handleDashboardOperations)
	api.GET("/dashboard/marketing", s.handleDashboardMarketing)
	api.GET("/dashboard/pos-summary", s.handleDashboardPOS)

	api.GET("/lab/jobs", s.handleLabJobs)
	api.GET("/insights/suggestions", s.handleSuggestions)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start blocks serving on addr until Shutdown or failure.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("stub backend listening")
	if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// detailErrorHandler renders errors as {"detail": ...}, the envelope the
// production backend uses.
func detailErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		detail := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				detail = msg
			}
		}
		if err := c.JSON(code, map[string]string{"detail": detail}); err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
