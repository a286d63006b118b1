// Package apiclient talks to the seva server's /v1 API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"seva-health/internal/logging"
	"seva-health/internal/platform/httpclient"

	"go.uber.org/zap"
)

// NetworkError is returned when the server cannot be reached.
type NetworkError = httpclient.NetworkError

// RemoteError is a request the server refused. Message is the server's own
// text and is meant to be shown unchanged.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string { return e.Message }

// IsStatus reports whether err is a RemoteError with the given status.
func IsStatus(err error, status int) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == status
}

type Client struct {
	http *httpclient.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	hc, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc, log: logging.OrNop(logger).Named("apiclient")}, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"Authorization": "Bearer " + token}
	}

	err := c.http.DoJSON(ctx, method, path, headers, in, out)
	if err == nil {
		return nil
	}

	var herr *httpclient.HTTPError
	if errors.As(err, &herr) {
		msg := http.StatusText(herr.StatusCode)
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal([]byte(herr.Body), &body) == nil && body.Error != "" {
			msg = body.Error
		}
		c.log.Debug("request refused", zap.String("path", path), zap.Int("status", herr.StatusCode), zap.String("error", msg))
		return &RemoteError{StatusCode: herr.StatusCode, Message: msg}
	}

	c.log.Warn("request failed", zap.String("path", path), zap.Error(err))
	return err
}

func query(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
