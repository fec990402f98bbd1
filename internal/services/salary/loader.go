package salary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/repository"
	"MyPay/internal/domain/service"
	xhttp "MyPay/pkg/http"
	applogger "MyPay/pkg/logger"
)

// Loader opens a model once and keeps it for the life of the process.
// Failed loads are not remembered, so a model dropped in later is picked up.
type Loader struct {
	open    func(ctx context.Context) (service.SalaryModel, error)
	source  string
	metrics repository.Metrics
	l       *applogger.Logger

	mu    sync.Mutex
	model service.SalaryModel
}

// NewFileLoader loads a linear regression artifact from path.
func NewFileLoader(path string, metrics repository.Metrics, l *applogger.Logger) *Loader {
	return newLoader(path, metrics, l, func(context.Context) (service.SalaryModel, error) {
		return openFile(path)
	})
}

// NewRemoteLoader uses a model service at baseURL after one health check.
func NewRemoteLoader(baseURL string, client *xhttp.Client, metrics repository.Metrics, l *applogger.Logger) *Loader {
	return newLoader(baseURL, metrics, l, func(ctx context.Context) (service.SalaryModel, error) {
		m := NewRemoteModel(baseURL, client)
		if err := m.Health(ctx); err != nil {
			return nil, &models.ModelLoadError{
				Message: fmt.Sprintf("Error loading model: %v", err),
				Err:     err,
			}
		}
		return m, nil
	})
}

func newLoader(source string, metrics repository.Metrics, l *applogger.Logger, open func(context.Context) (service.SalaryModel, error)) *Loader {
	if l == nil {
		l = applogger.Nop()
	}
	return &Loader{open: open, source: source, metrics: metrics, l: l}
}

func (ld *Loader) Load(ctx context.Context) (service.SalaryModel, error) {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	if ld.model != nil {
		return ld.model, nil
	}

	m, err := ld.open(ctx)
	if err != nil {
		result := "error"
		if errors.Is(err, fs.ErrNotExist) {
			result = "missing"
		}
		ld.metrics.RecordModelLoad(result)
		ld.l.Error("load model", applogger.String("source", ld.source), applogger.Error(err))
		return nil, err
	}

	ld.metrics.RecordModelLoad("ok")
	ld.l.Info("model loaded", applogger.String("source", ld.source))
	ld.model = m
	return m, nil
}

func openFile(path string) (service.SalaryModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.ModelLoadError{
				Message: fmt.Sprintf("Model file '%s' not found. Please ensure the model file is in the correct directory.", path),
				Err:     err,
			}
		}
		return nil, &models.ModelLoadError{Message: fmt.Sprintf("Error loading model: %v", err), Err: err}
	}

	m, err := ParseArtifact(b)
	if err != nil {
		return nil, &models.ModelLoadError{Message: fmt.Sprintf("Error loading model: %v", err), Err: err}
	}
	return m, nil
}

var _ service.ModelLoader = (*Loader)(nil)
