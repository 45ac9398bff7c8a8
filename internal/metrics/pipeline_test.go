// SPDX-License-Identifier: MIT
package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinman24/arcobs/internal/metrics"
)

func TestPromhttpExposure(t *testing.T) {
	metrics.RecordDownload("sheba", nil)
	metrics.RecordDownload("sheba", errors.New("timeout"))
	metrics.RecordUpload("sheba", nil)
	metrics.RecordListingLookup(true)
	metrics.RecordListingLookup(false)
	metrics.IncDailyFile("sheba", "mmcr")
	metrics.IncMask("sheba", "dabul")
	metrics.IncEmptyDay("eureka", "ahsrl")
	metrics.RecordJob("daily", "done", 12.5)
	metrics.IncWatcherEvent("ingested")

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	for _, want := range []string{
		`arcobs_blobs_downloaded_total{observatory="sheba",outcome="success"} 1`,
		`arcobs_blobs_downloaded_total{observatory="sheba",outcome="failure"} 1`,
		`arcobs_daily_files_written_total{instrument="mmcr",observatory="sheba"} 1`,
		`arcobs_jobs_total{kind="daily",state="done"} 1`,
		`arcobs_watcher_events_total{outcome="ingested"} 1`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %s", want)
	}

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
