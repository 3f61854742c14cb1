package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/pkg/config"
)

func TestLoad_ValoresPorDefectoRBAC(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RBAC.MinNameLength)
	assert.Equal(t, 10, cfg.RBAC.MinDescriptionLength)
	assert.False(t, cfg.RBAC.StrictPermissionRefs, "por defecto los ids desconocidos se omiten")
	assert.False(t, cfg.RBAC.AllowAdminOverride)
	assert.False(t, cfg.JWT.EmbedPermissions)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("RBAC_STRICT_PERMISSION_REFS", "true")
	t.Setenv("RBAC_ALLOW_ADMIN_OVERRIDE", "1")
	t.Setenv("RBAC_MIN_NAME_LENGTH", "5")
	t.Setenv("JWT_EMBED_PERMISSIONS", "true")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.RBAC.StrictPermissionRefs)
	assert.True(t, cfg.RBAC.AllowAdminOverride)
	assert.Equal(t, 5, cfg.RBAC.MinNameLength)
	assert.True(t, cfg.JWT.EmbedPermissions)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_ProductionSinSecret_Falla(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN_EscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "consultorio", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/consultorio?sslmode=disable", c.DSN())
}
