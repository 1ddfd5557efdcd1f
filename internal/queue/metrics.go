package queue

import (
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Pending plus scheduled tasks per queue",
		},
		[]string{"queue"},
	)
	QueueProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_processed_total",
			Help: "Total tasks processed grouped by status",
		},
		[]string{"kind", "status"},
	)
	QueueArchivedSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_archived_size",
			Help: "Tasks that exhausted their retries",
		},
		[]string{"queue"},
	)
)

func init() {
	prometheus.MustRegister(QueueDepth, QueueProcessedTotal, QueueArchivedSize)
}

// Inspector is the part of *asynq.Inspector used for gauges.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// RefreshGauges samples queue sizes into the gauges.
func RefreshGauges(in Inspector, queues ...string) error {
	for _, q := range queues {
		info, err := in.GetQueueInfo(q)
		if err != nil {
			return err
		}
		QueueDepth.WithLabelValues(q).Set(float64(info.Pending + info.Scheduled + info.Retry))
		QueueArchivedSize.WithLabelValues(q).Set(float64(info.Archived))
	}
	return nil
}
