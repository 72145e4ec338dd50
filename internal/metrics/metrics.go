// Package metrics define las métricas Prometheus del servicio. Viven en un
// paquete propio para evitar ciclos de import entre HTTP y servicios.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuthDecodeTotal cuenta resultados del pipeline de autenticación por
	// familia de token y outcome (ok | malformed | invalid | decrypt_failed |
	// unresolvable | missing).
	AuthDecodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_decode_total",
		Help: "Resultados de decodificación de bearer tokens",
	}, []string{"family", "outcome"})

	// MagicLinksSent cuenta magic links enviados por propósito.
	MagicLinksSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "magic_links_sent_total",
		Help: "Magic links enviados",
	}, []string{"purpose"})

	// MagicLinksConsumed cuenta verificaciones de magic links por outcome
	// (ok | expired | used | invalid).
	MagicLinksConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "magic_links_consumed_total",
		Help: "Verificaciones de magic links",
	}, []string{"outcome"})

	// HTTPDuration histograma de latencia por ruta y status.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "Latencia de requests HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"path", "method", "status"})
)

// Register registra las métricas en el registry dado (o el default si es nil).
// Tolera registros duplicados para no romper tests que levantan el router
// varias veces.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		AuthDecodeTotal, MagicLinksSent, MagicLinksConsumed, HTTPDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
