package metric

import "github.com/prometheus/client_golang/prometheus"

// Source reports live values at scrape time.
type Source struct {
	Keys         func() int
	VolatileKeys func() int
	QueueDepth   func() int
}

// Collector turns a Source into gauges.
type Collector struct {
	src Source

	keys       *prometheus.Desc
	volatile   *prometheus.Desc
	queueDepth *prometheus.Desc
}

// NewCollector creates a collector for src. Nil funcs are skipped.
func NewCollector(src Source) *Collector {
	return &Collector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently stored, including expired keys not yet swept.",
			nil, nil),
		volatile: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "volatile_keys"),
			"Keys carrying a TTL.",
			nil, nil),
		queueDepth: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "executor", "queue_depth"),
			"Commands waiting for the executor.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.volatile
	ch <- c.queueDepth
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	gauge(ch, c.keys, c.src.Keys)
	gauge(ch, c.volatile, c.src.VolatileKeys)
	gauge(ch, c.queueDepth, c.src.QueueDepth)
}

func gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, fn func() int) {
	if fn == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(fn()))
}
