package owclient

import (
	"sync/atomic"
)

// Metrics contains atomic counters shared by every session created from the same Config.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// RequestCount indicates the number of requests sent.
	RequestCount atomic.Uint64
	// ConnectCount indicates the number of connections opened.
	ConnectCount atomic.Uint64
	// RetryCount indicates the number of exchanges retried after a closed connection.
	RetryCount atomic.Uint64
	// KeepaliveCount indicates the number of continuation headers received.
	KeepaliveCount atomic.Uint64
	// ProtocolErrCount indicates the number of negative return codes received.
	ProtocolErrCount atomic.Uint64
	// TransportErrCount indicates the number of exchanges failed by a transport error.
	TransportErrCount atomic.Uint64
	// PersistenceDropCount indicates the number of responses without the persistence grant.
	PersistenceDropCount atomic.Uint64
}

func (m *Metrics) incRequestCount() {
	m.RequestCount.Add(1)
}

func (m *Metrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

func (m *Metrics) incRetryCount() {
	m.RetryCount.Add(1)
}

func (m *Metrics) incKeepaliveCount() {
	m.KeepaliveCount.Add(1)
}

func (m *Metrics) incProtocolErrCount() {
	m.ProtocolErrCount.Add(1)
}

func (m *Metrics) incTransportErrCount() {
	m.TransportErrCount.Add(1)
}

func (m *Metrics) incPersistenceDropCount() {
	m.PersistenceDropCount.Add(1)
}
