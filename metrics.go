package authcore

import "sync/atomic"

// MetricID indexes one engine counter.
type MetricID uint8

const (
	MetricRegisterSuccess MetricID = iota
	MetricRegisterDuplicate
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricResetRequest
	MetricResetRequestRateLimited
	MetricResetConfirmSuccess
	MetricResetConfirmFailure
	MetricStoreUnavailable
	metricIDCount
)

const cacheLineSize = 64

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different metrics do not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters. A nil or disabled
// Metrics turns every operation into a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

func newMetrics(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	RegisterSuccess         uint64 `json:"register_success"`
	RegisterDuplicate       uint64 `json:"register_duplicate"`
	LoginSuccess            uint64 `json:"login_success"`
	LoginFailure            uint64 `json:"login_failure"`
	LoginRateLimited        uint64 `json:"login_rate_limited"`
	RefreshSuccess          uint64 `json:"refresh_success"`
	RefreshFailure          uint64 `json:"refresh_failure"`
	ResetRequest            uint64 `json:"reset_request"`
	ResetRequestRateLimited uint64 `json:"reset_request_rate_limited"`
	ResetConfirmSuccess     uint64 `json:"reset_confirm_success"`
	ResetConfirmFailure     uint64 `json:"reset_confirm_failure"`
	StoreUnavailable        uint64 `json:"store_unavailable"`
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RegisterSuccess:         m.get(MetricRegisterSuccess),
		RegisterDuplicate:       m.get(MetricRegisterDuplicate),
		LoginSuccess:            m.get(MetricLoginSuccess),
		LoginFailure:            m.get(MetricLoginFailure),
		LoginRateLimited:        m.get(MetricLoginRateLimited),
		RefreshSuccess:          m.get(MetricRefreshSuccess),
		RefreshFailure:          m.get(MetricRefreshFailure),
		ResetRequest:            m.get(MetricResetRequest),
		ResetRequestRateLimited: m.get(MetricResetRequestRateLimited),
		ResetConfirmSuccess:     m.get(MetricResetConfirmSuccess),
		ResetConfirmFailure:     m.get(MetricResetConfirmFailure),
		StoreUnavailable:        m.get(MetricStoreUnavailable),
	}
}
