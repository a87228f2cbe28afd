package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transport wraps an http.RoundTripper so every outbound request to the
// store backend carries an X-Request-ID and is logged with its outcome.
type Transport struct {
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqID := RequestIDFrom(req.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	log := L().With(
		zap.String("request_id", reqID),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		log.Warn("outgoing request failed",
			zap.Error(err),
			zap.Duration("duration_ms", time.Since(start)),
		)
		return nil, err
	}

	log.Info("outgoing request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration_ms", time.Since(start)),
	)
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
