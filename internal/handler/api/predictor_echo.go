package api

import (
	"context"
	"errors"
	"time"

	"MyPay/internal/domain/models"
	domrepo "MyPay/internal/domain/repository"
	"MyPay/internal/usecase"
	xhttp "MyPay/pkg/http"
	xlogger "MyPay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Predictor is the slice of the prediction pipeline the HTTP layer needs.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error)
	Analyze(ctx context.Context, req models.PredictionRequest, opts models.PredictionOptions) (*models.Prediction, error)
	Record(ctx context.Context, id string) (models.ExportRecord, error)
	Rate(ctx context.Context) models.ExchangeRate
}

// PredictorEchoHandler serves the JSON API.
type PredictorEchoHandler struct {
	logger   *xlogger.Logger
	pipeline Predictor
	history  domrepo.HistoryStore
	limit    []echo.MiddlewareFunc
}

// NewPredictorEchoHandler creates the handler. history may be nil when no
// ClickHouse journal is configured; limit guards POST /api/predict.
func NewPredictorEchoHandler(logger *xlogger.Logger, pipeline Predictor, history domrepo.HistoryStore, limit ...echo.MiddlewareFunc) *PredictorEchoHandler {
	return &PredictorEchoHandler{logger: logger, pipeline: pipeline, history: history, limit: limit}
}

func (h *PredictorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict, h.limit...)
	g.GET("/rate", h.Rate)
	g.GET("/trends", h.Trends)
	g.GET("/predictions", h.History)
}

func (h *PredictorEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	preq, err := models.NewPredictionRequest(*req.Years, *req.JobRate)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}

	pred, err := h.pipeline.Predict(c.Request().Context(), preq, models.PredictionOptions{
		Comparison:     *req.ShowComparison,
		MarketAnalysis: *req.ShowMarket,
	})
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, AppError(err))
	}
	return xhttp.SuccessResponse(c, NewPredictionResponse(pred))
}

func (h *PredictorEchoHandler) Rate(c echo.Context) error {
	r := h.pipeline.Rate(c.Request().Context())
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, NewRateResponse(r))
}

func (h *PredictorEchoHandler) Trends(c echo.Context) error {
	r := h.pipeline.Rate(c.Request().Context())
	return xhttp.SuccessResponse(c, usecase.SampleTrends(r.Value))
}

func (h *PredictorEchoHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("prediction history requires the clickhouse journal"))
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	to := xhttp.ParseTimeDefault(req.To, now)
	from := xhttp.ParseTimeDefault(req.From, to.Add(-7*24*time.Hour))
	if from.After(to) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("from must not be after to").WithParam("from", req.From).WithParam("to", req.To))
	}

	rows, err := h.history.Query(c.Request().Context(), from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history query failed").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// AppError maps pipeline errors onto transport errors.
func AppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrModelUnavailable):
		return xhttp.ServiceUnavailableError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrRecordNotFound):
		return xhttp.NotFoundError("prediction record not found or expired").WithError(err)
	case errors.Is(err, models.ErrPredictionFailed):
		return xhttp.InternalError("Error making prediction").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

// NewPredictionResponse converts a prediction into its JSON form.
func NewPredictionResponse(p *models.Prediction) models.PredictionResponse {
	return models.PredictionResponse{
		ID:           p.Record.ID,
		Years:        p.Request.Years(),
		JobRate:      p.Request.JobRate(),
		SalaryUSD:    p.Result.USD,
		SalaryINR:    p.Result.INR,
		MonthlyINR:   p.Result.MonthlyINR,
		GrowthUSD:    p.Result.GrowthUSD(),
		GrowthINR:    p.Result.GrowthINR(),
		ExchangeRate: NewRateResponse(p.Rate),
		Experience:   sweepResponse(p.Experience),
		Market:       sweepResponse(p.Market),
		ExportURL:    "/export/" + p.Record.ID,
		PredictedAt:  p.Record.PredictedAt.Format(models.PredictionDateLayout),
	}
}

// NewRateResponse converts a rate into its JSON form.
func NewRateResponse(r models.ExchangeRate) models.RateResponse {
	return models.RateResponse{
		Base:      r.Base,
		Quote:     r.Quote,
		Rate:      r.Value,
		Source:    string(r.Source),
		FetchedAt: r.FetchedAt.Format(time.RFC3339),
	}
}

func sweepResponse(points []models.SweepPoint) []models.SweepResponse {
	if len(points) == 0 {
		return nil
	}
	out := make([]models.SweepResponse, len(points))
	for i, p := range points {
		out[i] = models.SweepResponse{X: p.X, USD: p.USD, INR: p.INR}
	}
	return out
}
