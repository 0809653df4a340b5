// internal/application/mint/metrics.go
package mint

import (
	"github.com/prometheus/client_golang/prometheus"

	mintdom "narratives-mint/internal/domain/mint"
)

// Metrics は mint 作成プログラムの結果を数えます。nil のままでも動きます。
// 数えるのはプログラムの成否で、ホストのコミット有無とは独立です
// （同じトランザクションの後続命令が失敗してロールバックされても ok のまま）。
type Metrics struct {
	provisions *prometheus.CounterVec
}

// NewMetrics は reg にカウンタを登録して Metrics を返します。
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		provisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "narratives",
			Subsystem: "mint",
			Name:      "provision_total",
			Help:      "Mint provisioning program outcomes by failed stage, counted before the host commits",
		}, []string{"outcome", "stage"}),
	}
	if reg != nil {
		if err := reg.Register(m.provisions); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Provisions は outcome / stage ラベルのカウンタを返します（テスト用）。
func (m *Metrics) Provisions(outcome, stage string) prometheus.Counter {
	return m.provisions.WithLabelValues(outcome, stage)
}

func (m *Metrics) observe(pe *mintdom.ProvisionError) {
	if m == nil {
		return
	}
	if pe == nil {
		m.provisions.WithLabelValues("ok", "").Inc()
		return
	}
	m.provisions.WithLabelValues("error", string(pe.Stage)).Inc()
}
