package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artpar/apiref/adapters/metrics"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	if m.ParsesTotal == nil {
		t.Error("ParsesTotal is nil")
	}
	if m.ParseDuration == nil {
		t.Error("ParseDuration is nil")
	}
	if m.RegisteredCollections == nil {
		t.Error("RegisteredCollections is nil")
	}
	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
	if m.CatalogReloads == nil {
		t.Error("CatalogReloads is nil")
	}
	if m.CatalogReloadErrors == nil {
		t.Error("CatalogReloadErrors is nil")
	}
}

func TestParsesTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ParsesTotal.WithLabelValues("url", "ok").Inc()
	m.ParsesTotal.WithLabelValues("path", "user_error").Add(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "apiref_parses_total" {
			found = true
			var total float64
			for _, metric := range f.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			if total != 4 {
				t.Errorf("parses_total sum = %v, want 4", total)
			}
		}
	}
	if !found {
		t.Error("apiref_parses_total not gathered")
	}
}

func TestRegisteredCollectionsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RegisteredCollections.Set(12)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	for _, f := range families {
		if f.GetName() == "apiref_registered_collections" {
			if v := f.GetMetric()[0].GetGauge().GetValue(); v != 12 {
				t.Errorf("registered_collections = %v, want 12", v)
			}
			return
		}
	}
	t.Error("apiref_registered_collections not gathered")
}

func TestSeparateRegistriesAreIsolated(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	m1 := metrics.NewWithRegistry(reg1)
	metrics.NewWithRegistry(reg2)

	m1.CatalogReloads.Inc()

	families, err := reg2.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "apiref_catalog_reloads_total" {
			if v := f.GetMetric()[0].GetCounter().GetValue(); v != 0 {
				t.Errorf("second registry saw %v reloads, want 0", v)
			}
		}
	}
}
