/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package gip

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink is the Ring's Prometheus reporter. It implements gid.Metrics
// (TimerFired) so New can install it directly as an Application's
// Metrics sink, and it tracks the per-attribute propagation counts as a
// gauge vector. Neither vector is registered against Prometheus's global
// default registerer, so creating many Ring instances in tests never
// collides; Collectors hands them to whichever registry the host owns.
type metricsSink struct {
	ring *Ring

	registrations *prometheus.GaugeVec
	timerFires    *prometheus.CounterVec
}

func newMetricsSink(r *Ring) *metricsSink {
	return &metricsSink{
		ring: r,
		registrations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "garp",
			Subsystem: "gip",
			Name:      "registrations",
			Help:      "Number of connected ports on which a GID attribute is currently registered.",
		}, []string{"attribute"}),
		timerFires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garp",
			Subsystem: "gid",
			Name:      "timer_fires_total",
			Help:      "Number of times a GID port timer has fired, by port and timer kind.",
		}, []string{"port", "timer"}),
	}
}

// Collectors returns the Prometheus collectors backing this Ring, for a
// caller that wants to register them against its own registry (e.g.
// prometheus.DefaultRegisterer, or a dedicated one in tests).
func (r *Ring) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.metrics.registrations, r.metrics.timerFires}
}

func (m *metricsSink) setCount(index int, count uint32) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(strconv.Itoa(index)).Set(float64(count))
}

// TimerFired implements gid.Metrics.
func (m *metricsSink) TimerFired(portNo int, timer string) {
	if m == nil {
		return
	}
	m.timerFires.WithLabelValues(strconv.Itoa(portNo), timer).Inc()
}
