package mcp_test

import (
	"testing"

	"github.com/opsgate/opsgate/internal/adapters/inbound/mcp"
	"github.com/stretchr/testify/assert"
)

func TestNewOpsgateMCPServer(t *testing.T) {
	s := mcp.NewOpsgateMCPServer(t.TempDir())
	assert.NotNil(t, s)
}
