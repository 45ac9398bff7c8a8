// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Blob traffic
	blobsDownloaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_blobs_downloaded_total",
		Help: "Raw blobs downloaded per observatory by outcome",
	}, []string{"observatory", "outcome"}) // outcome=success|failure

	blobsUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_blobs_uploaded_total",
		Help: "Product blobs uploaded per observatory by outcome",
	}, []string{"observatory", "outcome"})

	listingCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_listing_cache_lookups_total",
		Help: "Container listing cache lookups by result",
	}, []string{"result"}) // result=hit|miss

	// Products
	dailyFilesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_daily_files_written_total",
		Help: "Daily files produced per observatory and instrument",
	}, []string{"observatory", "instrument"})

	masksWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_masks_written_total",
		Help: "Daily cloud masks produced per observatory and instrument",
	}, []string{"observatory", "instrument"})

	emptyDaysSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_empty_days_skipped_total",
		Help: "Days skipped because no sample fell on them",
	}, []string{"observatory", "instrument"})

	// Jobs
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_jobs_total",
		Help: "Pipeline jobs by kind and final state",
	}, []string{"kind", "state"}) // state=done|failed

	jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arcobs_job_duration_seconds",
		Help:    "Wall time of pipeline jobs by kind",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	}, []string{"kind"})

	// Ingest watcher
	watcherEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arcobs_watcher_events_total",
		Help: "Inbox watcher events by outcome",
	}, []string{"outcome"}) // outcome=ingested|skipped|failure
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func RecordDownload(observatory string, err error) {
	blobsDownloaded.WithLabelValues(observatory, outcome(err)).Inc()
}

func RecordUpload(observatory string, err error) {
	blobsUploaded.WithLabelValues(observatory, outcome(err)).Inc()
}

func RecordListingLookup(hit bool) {
	if hit {
		listingCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	listingCacheLookups.WithLabelValues("miss").Inc()
}

func IncDailyFile(observatory, instrument string) {
	dailyFilesWritten.WithLabelValues(observatory, instrument).Inc()
}

func IncMask(observatory, instrument string) {
	masksWritten.WithLabelValues(observatory, instrument).Inc()
}

func IncEmptyDay(observatory, instrument string) {
	emptyDaysSkipped.WithLabelValues(observatory, instrument).Inc()
}

func RecordJob(kind, state string, seconds float64) {
	jobsTotal.WithLabelValues(kind, state).Inc()
	jobDurationSeconds.WithLabelValues(kind).Observe(seconds)
}

func IncWatcherEvent(outcome string) {
	watcherEvents.WithLabelValues(outcome).Inc()
}
