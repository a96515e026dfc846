package output

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/jbweber/hypermon/internal/inventory"
)

const metricNamespace = "hypermon"

// PrometheusFormatter renders the inventory in the Prometheus text
// exposition format, for node_exporter's textfile collector or a push.
type PrometheusFormatter struct{}

// FormatDomainList formats the inventory as Prometheus metrics. Counters the
// hypervisor reports as unsupported (negative) are left out.
func (f *PrometheusFormatter) FormatDomainList(records []inventory.DomainRecord) (string, error) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(newDomainCollector(records)); err != nil {
		return "", fmt.Errorf("failed to register domain collector: %w", err)
	}

	families, err := reg.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather domain metrics: %w", err)
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("failed to encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}

// domainCollector exposes a fixed inventory snapshot as const metrics.
type domainCollector struct {
	records []inventory.DomainRecord

	infoDesc      *prometheus.Desc
	stateDesc     *prometheus.Desc
	memoryDesc    *prometheus.Desc
	maxMemoryDesc *prometheus.Desc
	vcpusDesc     *prometheus.Desc
	cpuTimeDesc   *prometheus.Desc
	ifaceRxDesc   *prometheus.Desc
	ifaceTxDesc   *prometheus.Desc
}

func newDomainCollector(records []inventory.DomainRecord) *domainCollector {
	domainLabels := []string{"domain", "uuid"}
	ifaceLabels := []string{"domain", "uuid", "interface", "mac"}

	return &domainCollector{
		records: records,

		infoDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "info"),
			"Domain metadata, value is always 1.",
			[]string{"domain", "uuid", "state"}, nil,
		),
		stateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "state"),
			"Domain state code (0 none .. 7 suspended, 8 unknown).",
			domainLabels, nil,
		),
		memoryDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "memory_bytes"),
			"Current memory of the domain in bytes.",
			domainLabels, nil,
		),
		maxMemoryDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "max_memory_bytes"),
			"Maximum memory of the domain in bytes.",
			domainLabels, nil,
		),
		vcpusDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "vcpus"),
			"Number of virtual CPUs of the domain.",
			domainLabels, nil,
		),
		cpuTimeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain", "cpu_seconds_total"),
			"Cumulative CPU time of the domain since it started.",
			domainLabels, nil,
		),
		ifaceRxDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain_interface", "receive_bytes_total"),
			"Bytes received on a domain interface.",
			ifaceLabels, nil,
		),
		ifaceTxDesc: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "domain_interface", "transmit_bytes_total"),
			"Bytes transmitted on a domain interface.",
			ifaceLabels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *domainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.infoDesc
	ch <- c.stateDesc
	ch <- c.memoryDesc
	ch <- c.maxMemoryDesc
	ch <- c.vcpusDesc
	ch <- c.cpuTimeDesc
	ch <- c.ifaceRxDesc
	ch <- c.ifaceTxDesc
}

// Collect implements prometheus.Collector.
func (c *domainCollector) Collect(ch chan<- prometheus.Metric) {
	for _, rec := range c.records {
		ch <- prometheus.MustNewConstMetric(c.infoDesc, prometheus.GaugeValue, 1, rec.Name, rec.UUID, rec.State.String())
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, float64(rec.State), rec.Name, rec.UUID)
		ch <- prometheus.MustNewConstMetric(c.memoryDesc, prometheus.GaugeValue, float64(rec.Memory)*1024, rec.Name, rec.UUID)
		ch <- prometheus.MustNewConstMetric(c.maxMemoryDesc, prometheus.GaugeValue, float64(rec.MaxMemory)*1024, rec.Name, rec.UUID)
		ch <- prometheus.MustNewConstMetric(c.vcpusDesc, prometheus.GaugeValue, float64(rec.VCPUs), rec.Name, rec.UUID)
		ch <- prometheus.MustNewConstMetric(c.cpuTimeDesc, prometheus.CounterValue, float64(rec.CPUTime)/1e9, rec.Name, rec.UUID)

		items, _ := rec.Interfaces.Get()
		for _, iface := range items {
			if iface.RxBytes >= 0 {
				ch <- prometheus.MustNewConstMetric(c.ifaceRxDesc, prometheus.CounterValue, float64(iface.RxBytes),
					rec.Name, rec.UUID, iface.Name, iface.HardwareAddress)
			}
			if iface.TxBytes >= 0 {
				ch <- prometheus.MustNewConstMetric(c.ifaceTxDesc, prometheus.CounterValue, float64(iface.TxBytes),
					rec.Name, rec.UUID, iface.Name, iface.HardwareAddress)
			}
		}
	}
}
