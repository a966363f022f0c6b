package filter

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	descTotal    = prometheus.NewDesc("svex_filter_seen_total", "Works evaluated by the custom filter.", nil, nil)
	descFiltered = prometheus.NewDesc("svex_filter_excluded_total", "Works excluded by the custom filter.", nil, nil)
	descImage    = prometheus.NewDesc("svex_filter_excluded_image_total", "Image-set works excluded by the custom filter.", nil, nil)
	descLive     = prometheus.NewDesc("svex_filter_excluded_live_total", "Live-photo works excluded by the custom filter.", nil, nil)
)

// Collector 把 Stats 暴露为 prometheus 指标（采集时读取快照）。
type Collector struct {
	stats *Stats
}

func NewCollector(s *Stats) Collector { return Collector{stats: s} }

func (c Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descTotal
	ch <- descFiltered
	ch <- descImage
	ch <- descLive
}

func (c Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(descTotal, prometheus.CounterValue, float64(snap.Total))
	ch <- prometheus.MustNewConstMetric(descFiltered, prometheus.CounterValue, float64(snap.Filtered))
	ch <- prometheus.MustNewConstMetric(descImage, prometheus.CounterValue, float64(snap.Image))
	ch <- prometheus.MustNewConstMetric(descLive, prometheus.CounterValue, float64(snap.Live))
}

// WriteTextfile 以 node_exporter textfile 格式原子写出计数。
func WriteTextfile(path string, s *Stats) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(s)); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
