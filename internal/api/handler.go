package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pricing-service/internal/models"
	"pricing-service/internal/service"
	"pricing-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	products *service.ProductService
}

// NewHandler creates a new HTTP handler
func NewHandler(products *service.ProductService) *Handler {
	return &Handler{products: products}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.PATCH("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.GET("/products/:id/history", h.getPriceHistory)
		v1.GET("/products/sku/:sku", h.getProductBySKU)
		v1.POST("/products/bulk-update", h.bulkUpdatePrices)
		v1.POST("/products/bulk-partial", h.bulkPartialUpdate)
		v1.POST("/validate/profit-rules", h.validateProfitRules)
		v1.POST("/validate/offer-conflicts", h.validateOfferConflicts)
	}
}

// role and actor are carried on headers; visibility of financial
// fields is the only thing the role gates.
func callerRole(c *gin.Context) string {
	return c.GetHeader("X-Role")
}

func callerActor(c *gin.Context) string {
	if actor := c.GetHeader("X-User"); actor != "" {
		return actor
	}
	return "system"
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	p.ID = 0

	created, err := h.products.Create(c.Request.Context(), &p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created.View(models.RoleAdmin))
}

// listProducts handles catalog listing with an optional category filter
func (h *Handler) listProducts(c *gin.Context) {
	views, err := h.products.List(c.Request.Context(), callerRole(c), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	view, err := h.products.GetByID(c.Request.Context(), id, callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// getProductBySKU handles SKU lookups
func (h *Handler) getProductBySKU(c *gin.Context) {
	view, err := h.products.GetBySKU(c.Request.Context(), c.Param("sku"), callerRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateProduct handles merge-patch updates
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.products.Update(c.Request.Context(), id, &patch, callerActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated.View(callerRole(c)))
}

// deleteProduct handles product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// getPriceHistory returns the audit trail, most recent first
func (h *Handler) getPriceHistory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	entries, err := h.products.GetPriceHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// bulkUpdatePrices runs a filtered bulk pricing or discount update
func (h *Handler) bulkUpdatePrices(c *gin.Context) {
	var req models.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	summary, err := h.products.BulkUpdatePrices(c.Request.Context(), &req, callerActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// bulkPartialUpdate runs a per-entry partial price batch
func (h *Handler) bulkPartialUpdate(c *gin.Context) {
	var updates []models.PartialUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.products.BulkPartialUpdate(c.Request.Context(), updates, callerActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// validateProfitRules checks a candidate without mutating anything
func (h *Handler) validateProfitRules(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.products.ValidateProfitRules(&p); err != nil {
		c.JSON(http.StatusOK, gin.H{"is_valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_valid": true})
}

// validateOfferConflicts runs conflict detection against the catalog
func (h *Handler) validateOfferConflicts(c *gin.Context) {
	var body struct {
		Candidate models.Product `json:"candidate"`
		ExcludeID int64          `json:"exclude_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	report, err := h.products.ValidateOfferConflicts(c.Request.Context(), &body.Candidate, body.ExcludeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"is_valid":  report.IsValid(),
		"conflicts": report.Conflicts,
		"warnings":  report.Warnings,
	})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return id, true
}

// respondError maps engine error kinds to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		fieldErr   *models.FieldError
		ruleErr    *models.RuleError
		requestErr *models.RequestError
	)

	switch {
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &fieldErr), errors.As(err, &requestErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &ruleErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
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
