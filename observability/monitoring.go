package observability

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Metrics aggregates realtime-layer counters for the debug dashboard.
// All counters are atomic; Stats assembles a point-in-time view.
type Metrics struct {
	ConnectionsOpened uint64
	ConnectionsClosed uint64
	EventsPublished   uint64
	Delivered         uint64
	DeliveryFailures  uint64
	PresenceEmissions uint64
	FramesRejected    uint64

	startedAt time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now().UTC()}
}

func (m *Metrics) ConnOpened()  { atomic.AddUint64(&m.ConnectionsOpened, 1) }
func (m *Metrics) ConnClosed()  { atomic.AddUint64(&m.ConnectionsClosed, 1) }
func (m *Metrics) Published()   { atomic.AddUint64(&m.EventsPublished, 1) }
func (m *Metrics) FrameReject() { atomic.AddUint64(&m.FramesRejected, 1) }

func (m *Metrics) DeliveredN(n int) { atomic.AddUint64(&m.Delivered, uint64(n)) }

func (m *Metrics) DeliveryFailed() { atomic.AddUint64(&m.DeliveryFailures, 1) }

func (m *Metrics) PresenceEmitted() { atomic.AddUint64(&m.PresenceEmissions, 1) }

// Stats returns the dashboard snapshot, including process cpu/ram read
// through gopsutil. Process lookup failures degrade to zeros, the
// dashboard is best effort.
func (m *Metrics) Stats() map[string]any {
	stats := map[string]any{
		"uptime_seconds":     int(time.Since(m.startedAt).Seconds()),
		"connections_opened": atomic.LoadUint64(&m.ConnectionsOpened),
		"connections_closed": atomic.LoadUint64(&m.ConnectionsClosed),
		"events_published":   atomic.LoadUint64(&m.EventsPublished),
		"delivered":          atomic.LoadUint64(&m.Delivered),
		"delivery_failures":  atomic.LoadUint64(&m.DeliveryFailures),
		"presence_emissions": atomic.LoadUint64(&m.PresenceEmissions),
		"frames_rejected":    atomic.LoadUint64(&m.FramesRejected),
		"cpu_percent":        0.0,
		"ram_percent":        float32(0),
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats["cpu_percent"] = cpu
	}
	if ram, err := p.MemoryPercent(); err == nil {
		stats["ram_percent"] = ram
	}
	return stats
}
