package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/domain/access"
)

func TestSlug_QuitaTildes(t *testing.T) {
	assert.Equal(t, "psicologos", slug("Psicólogos"))
	assert.Equal(t, "ver", slug("Ver"))
}

func TestRender_IncluyeCatalogoCompletoEIdempotente(t *testing.T) {
	var b strings.Builder
	require.NoError(t, render(&b, access.Catalog, access.DefaultProfiles))
	sql := b.String()

	for _, d := range access.Catalog {
		assert.Contains(t, sql, "('perm-"+string(d.Code)+"', '"+string(d.Code)+"'")
	}
	assert.Contains(t, sql, "('mod-psicologos', 'Psicólogos')")
	assert.Contains(t, sql, "ON CONFLICT (code) DO UPDATE")
	assert.Equal(t, len(access.DefaultProfiles), strings.Count(sql, "WITH created AS ("))
	assert.Equal(t, 1, strings.Count(sql, "'informes.ver_todos'"), "Ver Todos no va en ningún perfil por defecto")
}

func TestRender_EscapaComillas(t *testing.T) {
	var b strings.Builder
	catalog := []access.Definition{{Code: "x.ver", Name: "Ver l'x", Module: "X", Action: "Ver", Description: "d"}}
	require.NoError(t, render(&b, catalog, nil))
	assert.Contains(t, b.String(), "'Ver l''x'")
}
