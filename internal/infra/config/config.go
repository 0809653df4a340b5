// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/viper"
)

// EnvPrefix は環境変数の接頭辞です（例: NARRATIVES_MINT_LEDGER_PATH）。
const EnvPrefix = "NARRATIVES_MINT"

// DefaultProgramID は Mint Provisioner プログラムの既定アドレスです。
const DefaultProgramID = "5MrVMiEx4F36UipLKQ5QU6jCkr4HfSe9SqHm2dc1s6eB"

// Config はアプリケーション全体の設定を保持します。
type Config struct {
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Rent    RentConfig    `mapstructure:"rent"`
	Program ProgramConfig `mapstructure:"program"`
	Log     LogConfig     `mapstructure:"log"`
	Secret  SecretConfig  `mapstructure:"secret"`
}

type LedgerConfig struct {
	// 空なら in-memory
	Path string `mapstructure:"path"`
}

type RentConfig struct {
	LamportsPerByteYear uint64  `mapstructure:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `mapstructure:"exemption_threshold"`
	BurnPercent         uint8   `mapstructure:"burn_percent"`
}

type ProgramConfig struct {
	ID string `mapstructure:"id"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SecretConfig struct {
	// Secret Manager の Secret Version フルパス
	// 例) projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest
	Authority string `mapstructure:"authority"`
}

// Load は設定ファイル（任意）と環境変数を読み込み Config を返します。
// file が空の場合は環境変数と既定値のみを使います。
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.path", "")
	v.SetDefault("rent.lamports_per_byte_year", 3480)
	v.SetDefault("rent.exemption_threshold", 2.0)
	v.SetDefault("rent.burn_percent", 50)
	v.SetDefault("program.id", DefaultProgramID)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("secret.authority", "")
}

// Validate は値の整合性をチェックします。
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.GetProgramID(); err != nil {
		errs = append(errs, err)
	}
	if c.Rent.ExemptionThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: rent.exemption_threshold must not be negative: %v", c.Rent.ExemptionThreshold))
	}
	if c.Rent.BurnPercent > 100 {
		errs = append(errs, fmt.Errorf("config: rent.burn_percent must be <= 100: %d", c.Rent.BurnPercent))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format must be text or json: %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// GetProgramID は Mint Provisioner のプログラムアドレスを返します。
func (c *Config) GetProgramID() (common.PublicKey, error) {
	id := strings.TrimSpace(c.Program.ID)
	if id == "" {
		return common.PublicKey{}, fmt.Errorf("config: program.id is empty")
	}
	pk := common.PublicKeyFromString(id)
	if pk == (common.PublicKey{}) || pk.ToBase58() != id {
		return common.PublicKey{}, fmt.Errorf("config: program.id is not a valid address: %q", id)
	}
	return pk, nil
}

// InMemoryLedger は ledger.path 未指定かどうかを返します。
func (c *Config) InMemoryLedger() bool {
	return strings.TrimSpace(c.Ledger.Path) == ""
}
