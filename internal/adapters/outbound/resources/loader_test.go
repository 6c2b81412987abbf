package resources_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsgate/opsgate/internal/adapters/outbound/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_YAMLResourceBags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
resources:
  orders-db:
    resource_type: database
    environment: prod
    encryption_enabled: true
    backup_schedule: "cron(0 3 * * ? *)"
  api-fn:
    resource_type: function
    memory_mb: 512
    timeout_seconds: 30
`), 0644))

	bags, err := resources.New().Load(path)
	require.NoError(t, err)
	require.Len(t, bags, 2)

	db := bags["orders-db"]
	assert.Equal(t, "prod", db.Environment())
	enc, ok := db.GetBool("encryption_enabled")
	require.True(t, ok)
	assert.True(t, enc)

	fn := bags["api-fn"]
	mem, ok := fn.GetFloat("memory_mb")
	require.True(t, ok)
	assert.InDelta(t, 512, mem, 0.001)
}

func TestLoader_JSONResourceBags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "resources": {
    "assets-bucket": {"resource_type": "bucket", "encryption_enabled": false}
  }
}`), 0644))

	bags, err := resources.New().Load(path)
	require.NoError(t, err)

	enc, ok := bags["assets-bucket"].GetBool("encryption_enabled")
	require.True(t, ok)
	assert.False(t, enc)
}

func TestLoader_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resources: [not: a: map"), 0644))

	_, err := resources.New().Load(path)
	assert.Error(t, err)
}

func TestDirFileSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "PRIVACY.md"), []byte("policy"), 0644))

	fs := resources.NewDirFileSet(dir)

	assert.True(t, fs.Exists("docs/PRIVACY.md"))
	assert.False(t, fs.Exists("docs"))
	assert.False(t, fs.Exists("SECURITY.md"))

	content, err := fs.Read("docs/PRIVACY.md")
	require.NoError(t, err)
	assert.Equal(t, "policy", string(content))
}
