package orders

import (
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type instruments struct {
	ordersPlaced     metric.Int64Counter
	intakeRejected   metric.Int64Counter
	unitsDecremented metric.Int64Counter
	ordersPurged     metric.Int64Counter
}

func newInstruments(meter metric.Meter) instruments {
	fallback := noop.NewMeterProvider().Meter(config.ServiceName)
	if meter == nil {
		meter = fallback
	}
	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		if err != nil {
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}

	return instruments{
		ordersPlaced:     counter("orders.placed", "Orders accepted by intake", "{order}"),
		intakeRejected:   counter("orders.intake_rejected", "Checkouts rejected by validation or stock pre-check", "{order}"),
		unitsDecremented: counter("stock.decremented_units", "Stock units removed by seller confirmation", "{unit}"),
		ordersPurged:     counter("orders.purged", "Orders deleted by the invalid-order cleanup", "{order}"),
	}
}
