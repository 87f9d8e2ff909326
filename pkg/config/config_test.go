package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirForTest(t, t.TempDir())

	require.NoError(t, Load(""))
	assert.Equal(t, "development", Global.App.Env)
	assert.Empty(t, Global.App.LogLevel)
	assert.Equal(t, "8080", Global.App.HttpPort)
	assert.Equal(t, 15*time.Second, Global.Eth.RpcTimeout)
	assert.Equal(t, "https://ethgasstation.info/json/ethgasAPI.json", Global.GasOracle.Url)
	assert.Equal(t, time.Duration(0), Global.GasOracle.CacheTTL)
	assert.False(t, Global.Redis.Enabled)
	assert.Equal(t, "none", Global.MQ.Type)
	assert.True(t, Global.Send.WaitReceipt)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)

	file := filepath.Join(dir, "gateway.yaml")
	content := []byte(`
app:
  env: production
  log_level: warn
  http_port: "9090"
eth:
  rpc_url: http://node:8545
  rpc_timeout: 3s
gas_oracle:
  cache_ttl: 30s
mq:
  type: kafka
  brokers: ["k1:9092", "k2:9092"]
`)
	require.NoError(t, os.WriteFile(file, content, 0644))
	t.Setenv("ETH_RPC_URL", "http://override:8545")

	require.NoError(t, Load(file))
	assert.Equal(t, "production", Global.App.Env)
	assert.Equal(t, "warn", Global.App.LogLevel)
	assert.Equal(t, "9090", Global.App.HttpPort)
	assert.Equal(t, "http://override:8545", Global.Eth.RpcUrl)
	assert.Equal(t, 3*time.Second, Global.Eth.RpcTimeout)
	assert.Equal(t, 30*time.Second, Global.GasOracle.CacheTTL)
	assert.Equal(t, "kafka", Global.MQ.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, Global.MQ.Brokers)
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
