// ライフサイクル操作のカウンタ。/metrics で公開する。
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// op: assign | change_status | get_history
	OpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itportal",
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "Number of asset lifecycle operations processed.",
	}, []string{"op"})

	// code: apperr code string (NOT_FOUND, PARTIAL_WRITE, ...)
	OpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itportal",
		Subsystem: "lifecycle",
		Name:      "operation_errors_total",
		Help:      "Number of failed asset lifecycle operations by error code.",
	}, []string{"op", "code"})
)

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
