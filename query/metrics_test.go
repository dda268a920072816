package query

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector(t *testing.T) {
	tc := newTestConnection(t, nil, func(s *testServer) {
		s.expect("version")
		s.write("version=3.13.7 build=1 platform=Linux")
		s.write("error id=0 msg=ok")
	})
	defer tc.Close()

	collector := NewCollector("ts3query", []string{"server"}, nil)
	collector.Add(tc.client, []string{"test"})
	defer collector.Remove(tc.client)

	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(collector); err != nil {
		t.Fatalf("Cannot register collector: %v", err)
	}

	if _, err := tc.client.Version(context.Background()); err != nil {
		t.Fatalf("Cannot fetch version: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Cannot gather metrics: %v", err)
	}

	byName := make(map[string]float64)
	for _, fam := range families {
		if !strings.HasPrefix(fam.GetName(), "ts3query_") {
			continue
		}
		for _, m := range fam.GetMetric() {
			byName[fam.GetName()] = m.GetCounter().GetValue()
			for _, l := range m.GetLabel() {
				if l.GetName() == "server" && l.GetValue() != "test" {
					t.Fatalf("server label = %q", l.GetValue())
				}
			}
		}
	}

	if byName["ts3query_commands_sent_total"] != 1 {
		t.Fatalf("commands_sent = %v", byName["ts3query_commands_sent_total"])
	}
	if byName["ts3query_responses_total"] != 1 {
		t.Fatalf("responses = %v", byName["ts3query_responses_total"])
	}
	if byName["ts3query_bytes_read_total"] == 0 || byName["ts3query_bytes_written_total"] == 0 {
		t.Fatalf("byte counters not advancing: %v", byName)
	}
}

func TestCollectorRemove(t *testing.T) {
	tc := newTestConnection(t, nil, nil)
	defer tc.Close()

	collector := NewCollector("ts3query", nil, nil)
	collector.Add(tc.client, nil)
	collector.Remove(tc.client)

	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(collector); err != nil {
		t.Fatalf("Cannot register collector: %v", err)
	}
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Cannot gather metrics: %v", err)
	}
	for _, fam := range families {
		if strings.HasPrefix(fam.GetName(), "ts3query_") && len(fam.GetMetric()) != 0 {
			t.Fatalf("metrics survived Remove: %s", fam.GetName())
		}
	}
}
