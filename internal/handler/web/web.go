package web

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/handler/api"
	"MyPay/internal/services/charts"
	"MyPay/internal/usecase"
	xhttp "MyPay/pkg/http"
	xlogger "MyPay/pkg/logger"

	"github.com/labstack/echo/v4"
)

const pageTemplate = "index.html"

type page struct {
	Form        models.PredictionForm
	Rate        models.ExchangeRate
	Today       string
	FieldErrors map[string]string
	Errors      []string
	Result      *result
}

type result struct {
	USD             float64
	INR             float64
	MonthlyINR      float64
	GrowthUSD       float64
	GrowthINR       float64
	ShowComparison  bool
	ExperienceChart string
	MarketChart     string
	ExportURL       string
}

// Handler serves the browser form, chart pages and CSV downloads.
type Handler struct {
	logger   *xlogger.Logger
	pipeline api.Predictor
	limit    []echo.MiddlewareFunc
	now      func() time.Time
}

func NewHandler(logger *xlogger.Logger, pipeline api.Predictor, limit ...echo.MiddlewareFunc) *Handler {
	return &Handler{logger: logger, pipeline: pipeline, limit: limit, now: time.Now}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/predict", h.Submit, h.limit...)
	e.GET("/export/:id", h.Export)

	g := e.Group("/charts")
	g.GET("/experience", h.ExperienceChart)
	g.GET("/market", h.MarketChart)
	g.GET("/trends", h.TrendsChart)
}

func (h *Handler) newPage(c echo.Context, form models.PredictionForm) *page {
	return &page{
		Form:        form,
		Rate:        h.pipeline.Rate(c.Request().Context()),
		Today:       h.now().Format("2006-01-02"),
		FieldErrors: map[string]string{},
	}
}

func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, pageTemplate, h.newPage(c, models.PredictionForm{
		Years:          1,
		JobRate:        3.5,
		ShowComparison: true,
		ShowMarket:     true,
	}))
}

// Submit runs a prediction from the form and renders the result or inline errors.
func (h *Handler) Submit(c echo.Context) error {
	form := &models.PredictionForm{}
	verrs := xhttp.ReadAndValidateRequest(c, form)
	p := h.newPage(c, *form)
	if verrs != nil {
		for _, v := range verrs {
			if v.Field != "" {
				p.FieldErrors[v.Field] = v.Message
			} else {
				p.Errors = append(p.Errors, v.Message)
			}
		}
		return c.Render(http.StatusBadRequest, pageTemplate, p)
	}

	req, err := models.NewPredictionRequest(form.Years, form.JobRate)
	if err != nil {
		p.Errors = append(p.Errors, err.Error())
		return c.Render(http.StatusBadRequest, pageTemplate, p)
	}

	opts := models.PredictionOptions{Comparison: form.ShowComparison, MarketAnalysis: form.ShowMarket}
	pred, err := h.pipeline.Predict(c.Request().Context(), req, opts)
	if err != nil {
		h.logger.Error("web predict error", xlogger.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrModelUnavailable) {
			status = http.StatusServiceUnavailable
			p.Errors = append(p.Errors, err.Error(), "Unable to load the prediction model.")
		} else {
			p.Errors = append(p.Errors, "Error making prediction: "+predictionCause(err))
		}
		return c.Render(status, pageTemplate, p)
	}

	res := &result{
		USD:            pred.Result.USD,
		INR:            pred.Result.INR,
		MonthlyINR:     pred.Result.MonthlyINR,
		GrowthUSD:      pred.Result.GrowthUSD(),
		GrowthINR:      pred.Result.GrowthINR(),
		ShowComparison: opts.Comparison,
		ExportURL:      "/export/" + pred.Record.ID,
	}
	if len(pred.Experience) > 0 {
		res.ExperienceChart = h.renderChart(charts.Experience(pred.Experience, req.Years()))
	}
	if len(pred.Market) > 0 {
		res.MarketChart = h.renderChart(charts.Market(pred.Market, req.Years(), req.JobRate()))
	}
	p.Result = res
	return c.Render(http.StatusOK, pageTemplate, p)
}

// Export downloads the stored record of a prediction as CSV.
func (h *Handler) Export(c echo.Context) error {
	rec, err := h.pipeline.Record(c.Request().Context(), c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, api.AppError(err))
	}

	return xhttp.AttachmentResponse(c, "text/csv; charset=utf-8", rec.FileName(), func(w io.Writer) error {
		return usecase.WriteCSV(w, rec)
	})
}

func (h *Handler) ExperienceChart(c echo.Context) error {
	return h.sweepChart(c, models.PredictionOptions{Comparison: true}, func(p *models.Prediction) charts.Renderer {
		return charts.Experience(p.Experience, p.Request.Years())
	})
}

func (h *Handler) MarketChart(c echo.Context) error {
	return h.sweepChart(c, models.PredictionOptions{MarketAnalysis: true}, func(p *models.Prediction) charts.Renderer {
		return charts.Market(p.Market, p.Request.Years(), p.Request.JobRate())
	})
}

func (h *Handler) TrendsChart(c echo.Context) error {
	r := h.pipeline.Rate(c.Request().Context())
	html, err := charts.Render(charts.Trends(usecase.SampleTrends(r.Value)))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("render chart").WithError(err))
	}
	return c.HTMLBlob(http.StatusOK, html)
}

func (h *Handler) sweepChart(c echo.Context, opts models.PredictionOptions, build func(*models.Prediction) charts.Renderer) error {
	q := &models.ChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req, err := models.NewPredictionRequest(q.Years, q.JobRate)
	if err != nil {
		return xhttp.AppErrorResponse(c, api.AppError(err))
	}

	pred, err := h.pipeline.Analyze(c.Request().Context(), req, opts)
	if err != nil {
		return xhttp.AppErrorResponse(c, api.AppError(err))
	}
	html, err := charts.Render(build(pred))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("render chart").WithError(err))
	}
	return c.HTMLBlob(http.StatusOK, html)
}

func (h *Handler) renderChart(r charts.Renderer) string {
	html, err := charts.Render(r)
	if err != nil {
		h.logger.Warn("render chart", xlogger.Error(err))
		return ""
	}
	return string(html)
}

func predictionCause(err error) string {
	return strings.TrimPrefix(err.Error(), models.ErrPredictionFailed.Error()+": ")
}
