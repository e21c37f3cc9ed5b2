package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("upcoming", SourceNetwork)
	r.RecordFetch("upcoming", SourceNetwork)
	r.RecordFetch("details", SourceStaleCache)
	r.RecordStorageError("get")
	r.RecordOperation("fetch_list", true)
	r.RecordOperation("fetch_list", false)
	r.RecordSuperseded("popular")
	r.ObserveRemote("details", 120*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.FetchesTotal.WithLabelValues("upcoming", SourceNetwork)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchesTotal.WithLabelValues("details", SourceStaleCache)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StorageErrorsTotal.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.OperationsTotal.WithLabelValues("fetch_list", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Superseded.WithLabelValues("popular")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RemoteDuration))
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordFetch("upcoming", SourceNetwork)
		r.ObserveRemote("upcoming", time.Second, nil)
		r.RecordStorageError("set")
		r.RecordOperation("toggle_favorite", true)
		r.RecordSuperseded("upcoming")
	})
}
