package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports analysis outcomes next to the HTTP metrics
type PrometheusObserver struct {
	analyses *prometheus.CounterVec
	duration *prometheus.HistogramVec
	scores   prometheus.Histogram
}

// NewPrometheusObserver creates the collectors and registers them with reg
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	o := &PrometheusObserver{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sharpness",
			Name:      "analyses_total",
			Help:      "Finished analyses by workflow and outcome.",
		}, []string{"workflow", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sharpness",
			Name:      "analysis_duration_seconds",
			Help:      "Analysis processing time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sharpness",
			Name:      "overall_score",
			Help:      "Overall blur confidence score of analysed images.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	for _, c := range []prometheus.Collector{o.analyses, o.duration, o.scores} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *PrometheusObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	workflow := string(event.Workflow)
	switch event.EventType {
	case AnalysisCompleted:
		outcome := "success"
		if blurry, ok := event.Metadata[MetaIsBlurry].(bool); ok && blurry {
			outcome = "blurry"
		}
		o.analyses.WithLabelValues(workflow, outcome).Inc()
		o.duration.WithLabelValues(workflow).Observe(event.ProcessingTime.Seconds())
		if overall, ok := event.Metadata[MetaOverall].(float64); ok {
			o.scores.Observe(overall)
		}
	case AnalysisFailed:
		o.analyses.WithLabelValues(workflow, "failed").Inc()
	}
}

func (o *PrometheusObserver) GetObserverName() string {
	return "prometheus_observer"
}
