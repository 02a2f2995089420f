package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/joao-fontenele/storefront"

// InitMeterProvider initializes the Prometheus exporter and MeterProvider and
// starts Go runtime instrumentation. It returns an http.Handler for the
// /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName, serviceVersion)),
	)
	otel.SetMeterProvider(mp)

	if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, nil, err
	}

	return promhttp.Handler(), mp.Shutdown, nil
}

// StoreMetrics records checkout outcomes.
type StoreMetrics struct {
	ordersPlaced     metric.Int64Counter
	orderRevenue     metric.Float64Counter
	orderLines       metric.Int64Histogram
	checkoutFailures metric.Int64Counter
}

func NewStoreMetrics(mp metric.MeterProvider) (*StoreMetrics, error) {
	meter := mp.Meter(meterName)

	ordersPlaced, err := meter.Int64Counter("orders_placed",
		metric.WithDescription("Orders committed by checkout."))
	if err != nil {
		return nil, err
	}

	orderRevenue, err := meter.Float64Counter("order_revenue",
		metric.WithDescription("Sum of committed order totals."),
		metric.WithUnit("{IDR}"))
	if err != nil {
		return nil, err
	}

	orderLines, err := meter.Int64Histogram("order_lines",
		metric.WithDescription("Lines per committed order."),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 21))
	if err != nil {
		return nil, err
	}

	checkoutFailures, err := meter.Int64Counter("checkout_failures",
		metric.WithDescription("Checkouts rolled back, by failure kind."))
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{
		ordersPlaced:     ordersPlaced,
		orderRevenue:     orderRevenue,
		orderLines:       orderLines,
		checkoutFailures: checkoutFailures,
	}, nil
}

func (m *StoreMetrics) OrderPlaced(ctx context.Context, total decimal.Decimal, lines int) {
	m.ordersPlaced.Add(ctx, 1)
	m.orderRevenue.Add(ctx, total.InexactFloat64())
	m.orderLines.Record(ctx, int64(lines))
}

func (m *StoreMetrics) CheckoutFailed(ctx context.Context, reason string) {
	m.checkoutFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
