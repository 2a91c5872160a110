package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// upstreamRoute labels every request the gateway did not route itself, i.e. gatekept pages
// and API calls forwarded to the portal application.
const upstreamRoute = "upstream"

// HTTPMetricsMiddleware records request counts, latencies and the number of requests in flight.
// Requests are labelled by method, route pattern and status code; raw paths are never used as
// labels, so forwarded traffic of any shape adds a single "upstream" series per status.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	requests, err := newTimedCounter(meter, timedCounterSpec{
		countName:           namespace + "_http_requests_total",
		countDescription:    "Total number of HTTP requests",
		countUnit:           "{request}",
		durationName:        namespace + "_http_request_duration_seconds",
		durationDescription: "HTTP request duration in seconds",
	})
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	inFlight, err := meter.Int64UpDownCounter(
		namespace+"_http_requests_in_flight",
		metric.WithDescription("Number of HTTP requests being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		inFlight.Add(ctx, 1)
		defer inFlight.Add(ctx, -1)

		c.Next()

		attrs := attribute.NewSet(
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		requests.add(ctx, attrs)
		requests.observe(ctx, time.Since(start), attrs)
	}
}

// sanitizePath returns the matched route pattern, or upstreamRoute for unmatched requests.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return upstreamRoute
	}
	return fullPath
}
