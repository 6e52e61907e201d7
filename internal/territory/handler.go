package territory

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aldo-territoires/carbon-backend/internal/export"
	"aldo-territoires/carbon-backend/internal/flux"
	"aldo-territoires/carbon-backend/internal/location"
	"aldo-territoires/carbon-backend/internal/reference"
	"aldo-territoires/carbon-backend/internal/stocks"
)

// Content types of the export endpoints
const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePDF  = "application/pdf"
)

// Handler handles HTTP requests for territory calculations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new territory handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers territory routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	territoires := router.Group("/territoires")
	{
		territoires.GET("", h.listEpcis)

		territoires.GET("/:epci/flux", h.getFlux)
		territoires.POST("/:epci/flux", h.postFlux)
		territoires.GET("/:epci/stocks", h.getStocks)
		territoires.POST("/:epci/stocks", h.postStocks)

		territoires.GET("/:epci/export.xlsx", h.exportExcel)
		territoires.GET("/:epci/export.csv", h.exportCSV)
		territoires.GET("/:epci/export.pdf", h.exportPDF)
	}
}

// listEpcis handles GET /api/v1/territoires
func (h *Handler) listEpcis(c *gin.Context) {
	epcis, err := h.service.ListEpcis(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"epcis": epcis, "count": len(epcis)})
}

// getFlux handles GET /api/v1/territoires/:epci/flux
func (h *Handler) getFlux(c *gin.Context) {
	opts, err := fluxOptionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondFlux(c, opts)
}

// postFlux handles POST /api/v1/territoires/:epci/flux
func (h *Handler) postFlux(c *gin.Context) {
	var opts flux.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondFlux(c, opts)
}

func (h *Handler) respondFlux(c *gin.Context, opts flux.Options) {
	result, err := h.service.ComputeFluxes(c.Request.Context(), territoryRequest(c), opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getStocks handles GET /api/v1/territoires/:epci/stocks
func (h *Handler) getStocks(c *gin.Context) {
	h.respondStocks(c, stocks.Options{WoodCalculation: flux.WoodMethod(c.Query("woodCalculation"))})
}

// postStocks handles POST /api/v1/territoires/:epci/stocks
func (h *Handler) postStocks(c *gin.Context) {
	var opts stocks.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondStocks(c, opts)
}

func (h *Handler) respondStocks(c *gin.Context, opts stocks.Options) {
	result, err := h.service.ComputeStocks(c.Request.Context(), territoryRequest(c), opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// exportExcel handles GET /api/v1/territoires/:epci/export.xlsx
func (h *Handler) exportExcel(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}
	d.Link = requestLink(c)

	e := export.NewExcelExporter(export.DefaultExcelOptions())
	defer e.Close()

	if err := e.WriteDashboard(d); err != nil {
		h.writeError(c, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	var buf bytes.Buffer
	if err := e.Write(&buf); err != nil {
		h.writeError(c, fmt.Errorf("failed to write workbook: %w", err))
		return
	}
	h.attachment(c, d.Code+".xlsx", contentTypeXLSX, buf.Bytes())
}

// exportCSV handles GET /api/v1/territoires/:epci/export.csv
func (h *Handler) exportCSV(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.NewCSVExporter(&buf, export.DefaultCSVOptions()).WriteEntries(d.Flux); err != nil {
		h.writeError(c, fmt.Errorf("failed to build csv: %w", err))
		return
	}
	h.attachment(c, d.Code+"-flux.csv", contentTypeCSV, buf.Bytes())
}

// exportPDF handles GET /api/v1/territoires/:epci/export.pdf
func (h *Handler) exportPDF(c *gin.Context) {
	d, ok := h.dashboard(c)
	if !ok {
		return
	}

	g := export.NewPDFGenerator(export.DefaultPDFOptions())
	if err := g.GenerateDashboard(d); err != nil {
		h.writeError(c, fmt.Errorf("failed to build pdf: %w", err))
		return
	}
	out, err := g.OutputToBytes()
	if err != nil {
		h.writeError(c, fmt.Errorf("failed to build pdf: %w", err))
		return
	}
	h.attachment(c, d.Code+".pdf", contentTypePDF, out)
}

func (h *Handler) dashboard(c *gin.Context) (export.Dashboard, bool) {
	opts, err := fluxOptionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return export.Dashboard{}, false
	}
	d, err := h.service.Dashboard(c.Request.Context(), territoryRequest(c), opts)
	if err != nil {
		h.writeError(c, err)
		return export.Dashboard{}, false
	}
	return d, true
}

func (h *Handler) attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

// writeError maps calculation errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, location.ErrUnknownTerritory):
		status = http.StatusNotFound
	case errors.Is(err, flux.ErrInvalidOptions):
		status = http.StatusBadRequest
	case errors.Is(err, reference.ErrMissingReferenceRow):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Territory request failed", zap.Error(err), zap.String("path", c.FullPath()))
	} else {
		h.logger.Warn("Territory request rejected", zap.Error(err), zap.Int("status", status))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// territoryRequest reads the EPCI path parameter and the optional comma
// separated communes query parameter
func territoryRequest(c *gin.Context) location.Request {
	req := location.Request{Epcis: []string{c.Param("epci")}}
	if communes := c.Query("communes"); communes != "" {
		for _, insee := range strings.Split(communes, ",") {
			if insee = strings.TrimSpace(insee); insee != "" {
				req.Communes = append(req.Communes, insee)
			}
		}
	}
	return req
}

// fluxOptionsFromQuery reads woodCalculation, proportionSolsImpermeables,
// area change overrides given as surface_<key>=<ha> and forest area
// overrides given as area_<ground type>=<ha>
func fluxOptionsFromQuery(c *gin.Context) (flux.Options, error) {
	opts := flux.Options{WoodCalculation: flux.WoodMethod(c.Query("woodCalculation"))}

	if raw := c.Query("proportionSolsImpermeables"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return flux.Options{}, fmt.Errorf("invalid proportionSolsImpermeables %q", raw)
		}
		opts.ProportionSolsImpermeables = &p
	}

	for key, values := range c.Request.URL.Query() {
		var target *map[string]float64
		var name string
		switch {
		case strings.HasPrefix(key, "surface_"):
			target, name = &opts.AreaChanges, strings.TrimPrefix(key, "surface_")
		case strings.HasPrefix(key, "area_"):
			target, name = &opts.Areas, strings.TrimPrefix(key, "area_")
		default:
			continue
		}
		area, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return flux.Options{}, fmt.Errorf("invalid area for %s: %q", key, values[0])
		}
		if *target == nil {
			*target = make(map[string]float64)
		}
		(*target)[name] = area
	}
	return opts, nil
}

func requestLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/territoire?epci=%s", scheme, c.Request.Host, c.Param("epci"))
}
