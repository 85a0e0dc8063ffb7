package base

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const metricsNamespace = "xodify"

// buildHTTPClient assembles the transport chain: the caller's transport (or
// http.DefaultTransport), then tracing, then metrics as the outermost layer.
func (o *options) buildHTTPClient() (*http.Client, error) {
	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}

	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	inner := transport

	if o.tracing {
		transport = otelhttp.NewTransport(transport)
	}

	if o.registerer != nil {
		instrumented, err := instrumentTransport(o.registerer, transport)
		if err != nil {
			return nil, err
		}
		transport = instrumented
	}

	if transport != inner {
		transport = &wrappedTransport{RoundTripper: transport, inner: inner}
	}
	hc.Transport = transport
	return hc, nil
}

// wrappedTransport forwards CloseIdleConnections past instrumentation layers
// that do not implement it.
type wrappedTransport struct {
	http.RoundTripper
	inner http.RoundTripper
}

func (t *wrappedTransport) CloseIdleConnections() {
	if ci, ok := t.inner.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

func instrumentTransport(reg prometheus.Registerer, next http.RoundTripper) (http.RoundTripper, error) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of requests sent to the Dify API",
		},
		[]string{"code", "method"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Time until response headers were received from the Dify API",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method"},
	)

	var err error
	if requests, err = registerOrReuse(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}

	return promhttp.InstrumentRoundTripperCounter(requests,
		promhttp.InstrumentRoundTripperDuration(duration, next)), nil
}

// registerOrReuse registers c, or returns the collector already registered
// under the same descriptor so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register dify client metrics: %w", err)
	}
	return c, nil
}
