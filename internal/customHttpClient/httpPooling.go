package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/GoIndex/internal/config"
)

// customTransport is shared by every outbound client so idle connections are reused across calls.
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewClient returns a client on the pooled transport. A zero timeout leaves the deadline to the request context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: customTransport, Timeout: timeout}
}
