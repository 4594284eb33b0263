package decode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finetune",
		Subsystem: "dataset",
		Name:      "records_decoded_total",
		Help:      "Number of records decoded, by file format.",
	}, []string{"format"})

	decodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finetune",
		Subsystem: "dataset",
		Name:      "decode_failures_total",
		Help:      "Number of failed file decodes, by file format.",
	}, []string{"format"})
)
