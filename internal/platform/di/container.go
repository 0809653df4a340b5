// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	appmint "narratives-mint/internal/application/mint"
	"narratives-mint/internal/infra/config"
	"narratives-mint/internal/infra/ledger"
	"narratives-mint/internal/infra/runtime"
	solanainfra "narratives-mint/internal/infra/solana"
)

// Container は cmd / cli から使う依存オブジェクトの束です。
type Container struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Runtime   *runtime.Runtime
	Query     *appmint.Query
	Metrics   *appmint.Metrics
	Registry  *prometheus.Registry
	ProgramID common.PublicKey

	db *ledger.DB
}

// NewContainer は ledger / runtime / Mint Provisioner をつないで返します。
func NewContainer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("di: config is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	programID, err := cfg.GetProgramID()
	if err != nil {
		return nil, err
	}

	// ------------------------------------------------------------
	// 1. 外部リソース (ledger / runtime)
	// ------------------------------------------------------------
	db, err := ledger.Open(cfg.Ledger.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("di: open ledger: %w", err)
	}

	rt, err := runtime.New(db, runtime.Rent{
		LamportsPerByteYear: cfg.Rent.LamportsPerByteYear,
		ExemptionThreshold:  cfg.Rent.ExemptionThreshold,
		BurnPercent:         cfg.Rent.BurnPercent,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("di: runtime: %w", err)
	}

	// ------------------------------------------------------------
	// 2. Metrics
	// ------------------------------------------------------------
	reg := prometheus.NewRegistry()
	metrics, err := appmint.NewMetrics(reg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("di: metrics: %w", err)
	}

	// ------------------------------------------------------------
	// 3. Mint Provisioner をプログラムとして登録
	// ------------------------------------------------------------
	rt.Register(programID, ProvisionerProgram(metrics, logger))

	if cfg.InMemoryLedger() {
		logger.Info().Str("program", programID.ToBase58()).Msg("using in-memory ledger")
	} else {
		logger.Info().Str("program", programID.ToBase58()).Str("path", cfg.Ledger.Path).Msg("ledger opened")
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Runtime:   rt,
		Query:     appmint.NewQuery(solanainfra.NewLedgerReader(rt)),
		Metrics:   metrics,
		Registry:  reg,
		ProgramID: programID,
		db:        db,
	}, nil
}

// ProvisionerProgram は呼び出しごとに InvokeContext 上の委譲アダプタを組み立てて
// Provisioner を実行する runtime.Program を返します。
func ProvisionerProgram(metrics *appmint.Metrics, logger zerolog.Logger) runtime.Program {
	return runtime.ProgramFunc(func(ic *runtime.InvokeContext, accounts []types.AccountMeta, data []byte) error {
		p := appmint.NewProvisioner(
			solanainfra.NewSystemAllocator(ic),
			solanainfra.NewTokenMintInitializer(ic),
			solanainfra.NewMetaplexMetadataAttacher(ic),
			ic,
		)
		p.SetProgramLogger(ic)
		p.SetMetrics(metrics)
		p.SetLogger(logger)
		return p.ProcessInstruction(ic.Context(), accounts, data)
	})
}

// Close はリソースを閉じます。
func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
