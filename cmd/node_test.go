package cmd

import (
	"testing"

	"github.com/mezonai/pohledger/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlagsNormalizesRole(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, applyFlags(cfg, ":9090", " Validator ", ""))
	assert.Equal(t, config.RoleValidator, cfg.Node.Role)
	assert.Equal(t, ":9090", cfg.Node.ListenAddr)

	assert.Error(t, applyFlags(config.Default(), "", "observer", ""))
}
