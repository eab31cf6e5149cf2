package javavm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/wippyai/mokapot/registry"
)

const meterName = "github.com/wippyai/mokapot/javavm"

type instruments struct {
	created   metric.Int64Counter
	destroyed metric.Int64Counter
	rejected  metric.Int64Counter
	attached  metric.Int64Counter
	failed    metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider, reg *registry.Registry[Wrapper], log *zap.Logger) *instruments {
	meter := mp.Meter(meterName)
	ins := &instruments{}

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{call}"))
		if err != nil {
			log.Warn("cannot create counter", zap.String("name", name), zap.Error(err))
		}
		return c
	}
	ins.created = counter("mokapot.vm.created", "JavaVMs created through CreateJavaVM")
	ins.destroyed = counter("mokapot.vm.destroyed", "JavaVMs destroyed through DestroyJavaVM")
	ins.rejected = counter("mokapot.vm.rejected", "Invocation calls rejected for a non-wrapper handle")
	ins.attached = counter("mokapot.thread.attached", "Threads attached through AttachCurrentThread[AsDaemon]")
	ins.failed = counter("mokapot.call.failed", "Invocation calls that returned an error")

	_, err := meter.Int64ObservableGauge("mokapot.vm.registered",
		metric.WithDescription("Wrapper JavaVMs currently in the registry"),
		metric.WithUnit("{vm}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(reg.Len()))
			return nil
		}))
	if err != nil {
		log.Warn("cannot create gauge", zap.Error(err))
	}
	return ins
}

func add(c metric.Int64Counter, op string) {
	if c == nil {
		return
	}
	c.Add(context.Background(), 1, metric.WithAttributes(opAttr(op)))
}

func opAttr(op string) attribute.KeyValue {
	return attribute.String("op", op)
}
