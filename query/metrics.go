package query

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metricInfo struct {
	description *prometheus.Desc
	supplier    func(stats *connStats) float64
}

// Collector exposes the counters of registered connections as Prometheus
// metrics. Connections are labelled with their id and any extra label
// values supplied on Add.
type Collector struct {
	mu      sync.Mutex
	clients map[*Client][]string
	infos   []metricInfo
}

// NewCollector creates a collector with the given metric prefix. Every
// metric carries a "connection" label plus variableLabels, whose values are
// supplied per connection on Add.
func NewCollector(prefix string, variableLabels []string, constLabels prometheus.Labels) *Collector {
	labels := append([]string{"connection"}, variableLabels...)

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(fmt.Sprintf("%s_%s", prefix, name), help, labels, constLabels)
	}

	return &Collector{
		clients: make(map[*Client][]string),
		infos: []metricInfo{
			{desc("commands_sent_total", "Commands written to the server, keep-alives included."),
				func(s *connStats) float64 { return float64(s.commandsSent.Load()) }},
			{desc("responses_total", "Responses (terminating status lines) read from the server."),
				func(s *connStats) float64 { return float64(s.responses.Load()) }},
			{desc("events_total", "Notifications decoded and dispatched."),
				func(s *connStats) float64 { return float64(s.events.Load()) }},
			{desc("events_dropped_total", "Notifications dropped because the event queue was full."),
				func(s *connStats) float64 { return float64(s.eventsDropped.Load()) }},
			{desc("keep_alives_total", "Keep-alive commands acknowledged by the server."),
				func(s *connStats) float64 { return float64(s.keepAlives.Load()) }},
			{desc("bytes_read_total", "Bytes read from the server."),
				func(s *connStats) float64 { return float64(s.bytesRead.Load()) }},
			{desc("bytes_written_total", "Bytes written to the server."),
				func(s *connStats) float64 { return float64(s.bytesWritten.Load()) }},
			{desc("decode_errors_total", "Notifications that failed to decode."),
				func(s *connStats) float64 { return float64(s.decodeErrors.Load()) }},
		},
	}
}

func (t *Collector) Describe(descs chan<- *prometheus.Desc) {
	for _, info := range t.infos {
		descs <- info.description
	}
}

func (t *Collector) Collect(metrics chan<- prometheus.Metric) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for client, labels := range t.clients {
		labelValues := append([]string{client.id}, labels...)
		for _, info := range t.infos {
			metrics <- prometheus.MustNewConstMetric(
				info.description,
				prometheus.CounterValue,
				info.supplier(&client.stats),
				labelValues...,
			)
		}
	}
}

// Add registers a connection. labels must match the variableLabels the
// collector was created with.
func (t *Collector) Add(client *Client, labels []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clients[client] = labels
}

// Remove drops a connection from the collector.
func (t *Collector) Remove(client *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.clients, client)
}
