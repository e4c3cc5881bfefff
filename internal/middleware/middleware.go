package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/metrics"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	kind         string
	errorMessage string
}

// Middleware carries the boundary settings; build one per server.
type Middleware struct {
	settings config.ServerSettings
	limiter  *IPRateLimiter
	logger   *logger_i.Logger
}

func New(settings config.ServerSettings) *Middleware {
	m := &Middleware{settings: settings, logger: logger_i.NewLogger("middleware")}
	if settings.RateLimitEnabled {
		m.limiter = NewIPRateLimiter(rate.Limit(settings.RatePerSecond), settings.RateBurst)
	}
	if settings.NoAuthBypass {
		m.logger.Warn("authentication is disabled; every caller is trusted")
	}
	return m
}

// Wrap runs trace, auth and rate limiting before next, and records the request metric.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, true)
}

// WrapPublic skips authentication. Used for the health probe only.
func (m *Middleware) WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, false)
}

func (m *Middleware) wrap(next http.HandlerFunc, authenticated bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
		}()

		re := m.processRequest(requestResponseStruct{req: r, writer: rec}, authenticated)
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

func (m *Middleware) processRequest(re requestResponseStruct, authenticated bool) requestResponseStruct {
	re.logger = m.logger
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "path", re.req.URL.Path)
	if authenticated {
		re = m.authenticate(re)
		if re.badRequest.isBadRequest {
			return re //stop if auth fails
		}
	}
	if m.limiter != nil {
		re = m.rateLimiter(re)
	}
	return re
}
