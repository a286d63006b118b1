// Package prediction calls the hosted risk-assessment models.
package prediction

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"seva-health/internal/logging"
	"seva-health/internal/platform/httpclient"

	"go.uber.org/zap"
)

const (
	CardioPositive = "Cardiovascular Disease detected"
	CardioNegative = "No Cardiovascular Disease detected"
)

var ErrNotConfigured = errors.New("prediction endpoint is not configured")

type Endpoints struct {
	Cardio   string
	Diabetes string
	Symptoms string
}

type Client struct {
	http      *httpclient.Client
	endpoints Endpoints
	log       *zap.Logger
}

func New(endpoints Endpoints, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:      httpclient.New(timeout),
		endpoints: endpoints,
		log:       logging.OrNop(logger).Named("prediction"),
	}
}

// Cardio returns CardioPositive or CardioNegative.
func (c *Client) Cardio(ctx context.Context, in CardioInput) (string, error) {
	if err := ValidateForm(in); err != nil {
		return "", err
	}
	var out struct {
		Prediction float64 `json:"prediction"`
	}
	if err := c.post(ctx, "cardio", c.endpoints.Cardio, in.complete(), &out); err != nil {
		return "", err
	}
	if out.Prediction == 1 {
		return CardioPositive, nil
	}
	return CardioNegative, nil
}

func (c *Client) Diabetes(ctx context.Context, in DiabetesInput) (string, error) {
	if err := ValidateForm(in); err != nil {
		return "", err
	}
	var out struct {
		Result string `json:"result"`
	}
	if err := c.post(ctx, "diabetes", c.endpoints.Diabetes, in, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *Client) Symptoms(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySymptoms
	}
	var out struct {
		Result string `json:"result"`
	}
	if err := c.post(ctx, "symptoms", c.endpoints.Symptoms, map[string]string{"value": text}, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *Client) post(ctx context.Context, model, endpoint string, in, out any) error {
	if strings.TrimSpace(endpoint) == "" {
		return ErrNotConfigured
	}
	err := c.http.DoJSON(ctx, http.MethodPost, endpoint, nil, in, out)
	if err == nil {
		return nil
	}

	c.log.Warn("prediction request failed", zap.String("model", model), zap.Error(err))
	var nerr *httpclient.NetworkError
	if errors.As(err, &nerr) {
		return nerr
	}
	return &httpclient.NetworkError{Op: model + " prediction", Err: err}
}
