package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/policylens/survey-profiler/internal/store"
	"github.com/policylens/survey-profiler/internal/store/model"
)

const collectTimeout = 5 * time.Second

type submissionStatsCollector struct {
	store            store.Store
	totalSubmissions *prometheus.Desc
	byStatus         *prometheus.Desc
}

func newSubmissionStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_submissions_%s", surveyProfiler, name)
	}

	return &submissionStatsCollector{
		store: s,
		totalSubmissions: prometheus.NewDesc(
			fqName("total"),
			"Total number of submissions.",
			nil,
			prometheus.Labels{},
		),
		byStatus: prometheus.NewDesc(
			fqName("by_status"),
			"Number of submissions in each status.",
			[]string{"status"},
			prometheus.Labels{},
		),
	}
}

func (c *submissionStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalSubmissions
	ch <- c.byStatus
}

// Collect implements Collector.
func (c *submissionStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.store.Statistics(ctx)
	if err != nil {
		zap.S().Named("submission_collector").Errorf("failed to collect submission statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalSubmissions, prometheus.GaugeValue, float64(stats.Total))

	// report every status, zero included
	for _, status := range []model.SubmissionStatus{
		model.SubmissionStatusPending,
		model.SubmissionStatusProcessing,
		model.SubmissionStatusProcessed,
		model.SubmissionStatusFailed,
	} {
		ch <- prometheus.MustNewConstMetric(c.byStatus, prometheus.GaugeValue, float64(stats.ByStatus[status]), string(status))
	}
}
