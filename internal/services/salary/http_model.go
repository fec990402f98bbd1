package salary

import (
	"context"
	"fmt"
	"math"

	"MyPay/internal/domain/service"
	xhttp "MyPay/pkg/http"
)

// RemoteModel scores against an external model service.
//
//	POST {base}/predict {"instances": [[years, job_rate]]} -> {"predictions": [usd]}
type RemoteModel struct {
	baseURL string
	client  *xhttp.Client
}

func NewRemoteModel(baseURL string, client *xhttp.Client) *RemoteModel {
	if client == nil {
		client = xhttp.NewClient()
	}
	return &RemoteModel{baseURL: baseURL, client: client}
}

type predictPayload struct {
	Instances [][2]float64 `json:"instances"`
}

type predictReply struct {
	Predictions []float64 `json:"predictions"`
}

func (m *RemoteModel) Predict(ctx context.Context, years, jobRate float64) (float64, error) {
	var out predictReply
	if err := m.postJSON(ctx, "/predict", predictPayload{Instances: [][2]float64{{years, jobRate}}}, &out); err != nil {
		return 0, err
	}
	if len(out.Predictions) != 1 {
		return 0, fmt.Errorf("expected 1 prediction, got %d", len(out.Predictions))
	}
	v := out.Predictions[0]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("model service returned a non-finite prediction")
	}
	return v, nil
}

// Health checks that the service answers GET {base}/health with 2xx.
func (m *RemoteModel) Health(ctx context.Context) error {
	err := m.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    m.baseURL + "/health",
	}, nil)
	if err != nil {
		return fmt.Errorf("model service health: %w", err)
	}
	return nil
}

func (m *RemoteModel) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	err := m.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    m.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

var _ service.SalaryModel = (*RemoteModel)(nil)
