package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annosync_items_processed_total",
		Help: "Number of record IDs read by a sync job",
	}, []string{"job"})

	itemsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annosync_items_skipped_total",
		Help: "Number of records dropped because of processing failures",
	}, []string{"job"})

	itemsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annosync_items_discarded_total",
		Help: "Number of records that required no index changes",
	}, []string{"job"})

	docsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annosync_documents_written_total",
		Help: "Number of index documents created or updated",
	}, []string{"job"})

	docsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "annosync_documents_deleted_total",
		Help: "Number of index documents deleted",
	}, []string{"job"})
)
