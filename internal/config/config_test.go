package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIndexerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *IndexerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
ethereum:
  rpc_url: "http://localhost:8545"
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  start_block: 1000
  poll_interval: "10s"
  batch_size: 500
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  max_reconnects: 5
  reconnect_wait: "5s"
  connection_name: "test-connection"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *IndexerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "testuser", cfg.Database.User)
				assert.Equal(t, "testpass", cfg.Database.Password)
				assert.Equal(t, "testdb", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
				assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Ethereum.ContractAddress)
				assert.Equal(t, uint64(1000), cfg.Ethereum.StartBlock)
				assert.Equal(t, "10s", cfg.Ethereum.PollInterval.String())
				assert.Equal(t, uint64(500), cfg.Ethereum.BatchSize)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
nats:
  url: "nats://localhost:4222"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *IndexerConfig) {
				// Check defaults
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "5s", cfg.Ethereum.PollInterval.String())
				assert.Equal(t, uint64(1000), cfg.Ethereum.BatchSize)
				assert.Equal(t, "12s", cfg.Ethereum.BlockHeadTTL.String())
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "FOODSAFE_EVENTS", cfg.NATS.StreamName)
			},
		},
		{
			name: "missing rpc url",
			configFile: `
database:
  host: localhost
  dbname: testdb
ethereum:
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
`,
			expectError: true,
		},
		{
			name: "missing contract address",
			configFile: `
ethereum:
  rpc_url: "http://localhost:8545"
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadIndexerConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 15
  write_timeout: 15
  idle_timeout: 60
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
  contract_address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
auth:
  api_keys:
    - "key-one"
    - "key-two"
pinata:
  api_key: "pk"
  secret_api_key: "sk"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 15, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)
				assert.Equal(t, "pk", cfg.Pinata.APIKey)
				assert.Equal(t, "sk", cfg.Pinata.SecretAPIKey)
				assert.Equal(t, "https://api.pinata.cloud", cfg.Pinata.BaseURL)
				assert.Equal(t, "https://gateway.pinata.cloud", cfg.Pinata.GatewayURL)
			},
		},
		{
			name:        "config with defaults",
			configFile:  "debug: false",
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 10, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "30s", cfg.Pinata.HTTPTimeout.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadAPIConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadSweeperConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *SweeperConfig)
	}{
		{
			name: "valid config file",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
pinata:
  api_key: "pk"
  secret_api_key: "sk"
pin_sweeper:
  interval: "30m"
  batch_size: 50
  recheck_after: "12h"
  worker:
    pool_size: 5
    queue_size: 50
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SweeperConfig) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "30m0s", cfg.PinSweeper.Interval.String())
				assert.Equal(t, 50, cfg.PinSweeper.BatchSize)
				assert.Equal(t, "12h0m0s", cfg.PinSweeper.RecheckAfter.String())
				assert.Equal(t, 5, cfg.PinSweeper.Worker.WorkerPoolSize)
				assert.Equal(t, 50, cfg.PinSweeper.Worker.WorkerQueueSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: testdb
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SweeperConfig) {
				assert.Equal(t, 5, cfg.Database.MaxOpenConns)
				assert.Equal(t, 2, cfg.Database.MaxIdleConns)
				assert.Equal(t, "1h0m0s", cfg.Database.ConnMaxLifetime.String())
				assert.Equal(t, "1h0m0s", cfg.PinSweeper.Interval.String())
				assert.Equal(t, 100, cfg.PinSweeper.BatchSize)
				assert.Equal(t, "24h0m0s", cfg.PinSweeper.RecheckAfter.String())
				assert.Equal(t, 10, cfg.PinSweeper.Worker.WorkerPoolSize)
			},
		},
		{
			name:        "missing database host",
			configFile:  "database:\n  dbname: testdb",
			expectError: true,
		},
		{
			name:        "missing database name",
			configFile:  "database:\n  host: localhost",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadSweeperConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		User:     "foodsafe",
		Password: "secret",
		DBName:   "foodsafe",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.example.com port=5433 user=foodsafe password=secret dbname=foodsafe sslmode=require",
		cfg.DSN())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	t.Setenv("FOODSAFE_DATABASE_HOST", "env-host")
	t.Setenv("FOODSAFE_DATABASE_DBNAME", "env-db")
	t.Setenv("FOODSAFE_ETHEREUM_RPC_URL", "http://env-node:8545")
	t.Setenv("FOODSAFE_ETHEREUM_CONTRACT_ADDRESS", "0x5FbDB2315678afecb367f032d93F642f64180aa3")

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("debug: false"), 0600))

	cfg, err := LoadIndexerConfig(configFile, "")
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "http://env-node:8545", cfg.Ethereum.RPCURL)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Ethereum.ContractAddress)
}
