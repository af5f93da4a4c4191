package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementAuthenticationLabelsResult(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementAuthentication("admin", true)
	m.IncrementAuthentication("admin", false)
	m.IncrementAuthentication("admin", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Authentications.WithLabelValues("admin", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Authentications.WithLabelValues("admin", "rejected")))
}

func TestObserveStoreCountsFailures(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ObserveStore("redis", "save", time.Now(), nil)
	m.ObserveStore("redis", "save", time.Now(), errors.New("timeout"))

	assert.Equal(t, 1, testutil.CollectAndCount(m.StoreDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreFailures.WithLabelValues("redis", "save")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	// a second registry must not panic on duplicate registration
	a := NewWithRegisterer(prometheus.NewRegistry())
	b := NewWithRegisterer(prometheus.NewRegistry())

	a.IncrementOperation("add_user", "success")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Operations.WithLabelValues("add_user", "success")))
}
