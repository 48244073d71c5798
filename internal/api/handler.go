package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/report"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	dashboard    *service.DashboardService
	checkout     *service.CheckoutService
	weather      *service.WeatherService
	allowOrigins []string
	checks       map[string]ReadinessCheck
}

// NewHandler creates a new HTTP handler
func NewHandler(
	dashboard *service.DashboardService,
	checkout *service.CheckoutService,
	weather *service.WeatherService,
	allowOrigins []string,
) *Handler {
	return &Handler{
		dashboard:    dashboard,
		checkout:     checkout,
		weather:      weather,
		allowOrigins: allowOrigins,
		checks:       map[string]ReadinessCheck{},
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checks[name] = check
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = h.allowOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "Idempotency-Key"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/config", h.getShopConfig)
		v1.GET("/items", h.listItems)
		v1.POST("/checkout", h.createCheckout)

		v1.GET("/dashboard", h.getDashboard)
		v1.GET("/dashboard/:date", h.getDashboard)
		v1.GET("/dashboard/:date/history", h.getHistory)
		v1.GET("/dashboard/:date/export", h.exportCSV)

		v1.GET("/weather", h.getWeather)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck probes every registered dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"failed": failed,
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) getShopConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.weather.ShopConfig(c.Request.Context()))
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.checkout.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// createCheckout accepts either the register's form post or a JSON cart
func (h *Handler) createCheckout(c *gin.Context) {
	var req *service.CheckoutRequest

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		req = &service.CheckoutRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
			return
		}
	} else {
		if err := c.Request.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid form",
				"details": err.Error(),
			})
			return
		}
		form := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				form[key] = values[0]
			}
		}
		req = service.ParseCheckoutForm(form)
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, gin.H{
			"success": false,
			"date":    report.FormatISO(time.Now()),
		})
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *Handler) getDashboard(c *gin.Context) {
	d, err := h.dashboard.Load(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) getHistory(c *gin.Context) {
	history, err := h.dashboard.History(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) exportCSV(c *gin.Context) {
	if _, err := h.dashboard.Export(c.Request.Context(), c.Param("date"), attachmentSaver{c: c}); err != nil {
		writeError(c, err)
	}
}

func (h *Handler) getWeather(c *gin.Context) {
	w, err := h.weather.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// attachmentSaver writes an export as a file download
type attachmentSaver struct {
	c *gin.Context
}

func (s attachmentSaver) Save(data []byte, filename, mimeType string) error {
	s.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	s.c.Data(http.StatusOK, mimeType, data)
	return nil
}

// writeError maps domain errors to status codes. extra fields are merged
// into the body.
func writeError(c *gin.Context, err error, extra ...gin.H) {
	status := http.StatusInternalServerError
	message := "Internal error"

	var (
		dateErr    *report.InvalidDateError
		unknownErr *service.UnknownItemError
		qtyErr     *service.InvalidQuantityError
		fetchErr   *service.UpstreamFetchError
	)
	switch {
	case errors.As(err, &dateErr):
		status, message = http.StatusBadRequest, "Invalid date"
	case errors.Is(err, report.ErrEmptyInput):
		status, message = http.StatusNotFound, "No sales"
	case errors.Is(err, service.ErrEmptyCart), errors.As(err, &unknownErr), errors.As(err, &qtyErr):
		status, message = http.StatusBadRequest, "Invalid cart"
	case errors.Is(err, service.ErrCheckoutInFlight):
		status, message = http.StatusConflict, "Duplicate checkout"
	case errors.As(err, &fetchErr):
		status, message = http.StatusBadGateway, "Upstream unavailable"
	}

	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	body := gin.H{
		"error":   message,
		"details": err.Error(),
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
