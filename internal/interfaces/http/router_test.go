package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/auth/login", "",
		`{"email":"x@consultorio.co","password":"`+testPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token       string   `json:"token"`
		Permissions []string `json:"permissions"`
		Modules     []string `json:"modules"`
	}
	decode(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Contains(t, body.Permissions, "informes.editar")
	assert.Equal(t, []string{access.ModuloInformes}, body.Modules)

	// El token emitido sirve para las rutas protegidas.
	resp = doRequest(t, env.app, http.MethodGet, "/api/informes", "Bearer "+body.Token, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_PasswordIncorrecto_Retorna401(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/auth/login", "", `{"email":"x@consultorio.co","password":"otra"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_CuerpoInvalido_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/auth/login", "", `{"email":`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Perfiles
// ──────────────────────────────────────────────────────────────────────────────

func TestPerfiles_CrearYAsignarPermisos(t *testing.T) {
	env := newTestEnv(t)
	admin := tokenFor(t, uAdmin)

	resp := doRequest(t, env.app, http.MethodPost, "/api/perfiles", admin,
		`{"nombre":"Recepción","descripcion":"Atiende la agenda del consultorio"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)

	body := `{"permisosIds":["` + memory.PermissionID(access.SesionesVer) + `","perm-inexistente"]}`
	resp = doRequest(t, env.app, http.MethodPut, "/api/perfiles/"+created.ID+"/permisos", admin, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var set struct {
		AssignedCount int `json:"assigned_count"`
	}
	decode(t, resp, &set)
	assert.Equal(t, 1, set.AssignedCount, "los ids desconocidos se omiten")
}

func TestPerfiles_NombreDuplicado_Retorna409(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/perfiles", tokenFor(t, uAdmin),
		`{"nombre":"Psicólogo","descripcion":"Duplicado del perfil existente"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "DUPLICATE_NAME", body["code"])
}

func TestPerfiles_ValidacionPorCampo_Retorna400(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/perfiles", tokenFor(t, uAdmin), `{"nombre":"ab","descripcion":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code   string `json:"code"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Len(t, body.Fields, 2)
}

func TestPerfiles_EliminarConUsuarios_Retorna409(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodDelete, "/api/perfiles/"+pPsico, tokenFor(t, uAdmin), "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "HAS_DEPENDENTS", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios / perfiles
// ──────────────────────────────────────────────────────────────────────────────

func TestUsuarios_AsignarPerfilInexistente_NoModifica(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPut, "/api/usuarios/"+uDrX+"/perfiles", tokenFor(t, uAdmin),
		`{"perfilesIds":["`+pPac+`","perfil-fantasma"]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_REFERENCE", body["code"])
	assert.Equal(t, []string{pPsico}, env.store.ProfileIDsOf(uDrX), "la asignación previa queda intacta")
}

func TestUsuarios_AsignarYConsultarPermisos(t *testing.T) {
	env := newTestEnv(t)
	admin := tokenFor(t, uAdmin)

	resp := doRequest(t, env.app, http.MethodPut, "/api/usuarios/"+uPac+"/perfiles", admin,
		`{"perfilesIds":["`+pPac+`","`+pPsico+`"]}`)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, env.app, http.MethodGet, "/api/usuarios/"+uPac+"/permisos", admin, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var perms struct {
		Codes []string `json:"codes"`
	}
	decode(t, resp, &perms)
	assert.Equal(t, []string{"informes.editar", "informes.eliminar", "informes.registrar", "informes.ver"}, perms.Codes)

	resp = doRequest(t, env.app, http.MethodDelete, "/api/usuarios/"+uPac+"/perfiles/"+pPsico, admin, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []string{pPac}, env.store.ProfileIDsOf(uPac))
}

func TestUsuarios_Inexistente_Retorna404(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodGet, "/api/usuarios/u-nadie/permisos", tokenFor(t, uAdmin), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Informes
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A: X edita R1 (propio) pero no R2 (de Y).
func TestInformes_EdicionSoloPropietario(t *testing.T) {
	env := newTestEnv(t)
	drX := tokenFor(t, uDrX)
	body := `{"titulo":"R1 revisado","contenido":"nuevo","pacientesIds":["` + pac1 + `"]}`

	resp := doRequest(t, env.app, http.MethodPut, "/api/informes/"+r1, drX, body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, env.app, http.MethodPut, "/api/informes/"+r2, drX, body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Escenario B: el paciente no ve R2 (privado) pero sí R1.
func TestInformes_PacienteNoVePrivado(t *testing.T) {
	env := newTestEnv(t)
	pac := tokenFor(t, uPac)

	resp := doRequest(t, env.app, http.MethodGet, "/api/informes/"+r2, pac, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, env.app, http.MethodGet, "/api/informes", pac, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, r1, list.Items[0].ID)
}

// Escenario C: informe sin pacientes.
func TestInformes_CrearSinPacientes_Retorna400ConCampo(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodPost, "/api/informes", tokenFor(t, uDrX),
		`{"titulo":"Nuevo","contenido":"c","pacientesIds":[]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "pacientesIds", body.Fields[0].Field)
}

func TestInformes_EliminarAjeno_Retorna403YInexistente404(t *testing.T) {
	env := newTestEnv(t)
	drX := tokenFor(t, uDrX)

	resp := doRequest(t, env.app, http.MethodDelete, "/api/informes/"+r2, drX, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, env.app, http.MethodDelete, "/api/informes/no-existe", drX, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, env.app, http.MethodDelete, "/api/informes/"+r1, drX, "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestInformes_PDFNoRegistradoSinGenerador(t *testing.T) {
	env := newTestEnv(t)
	resp := doRequest(t, env.app, http.MethodGet, "/api/informes/"+r1+"/pdf", tokenFor(t, uDrX), "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Las rutas protegidas se montan por grupo: una ruta inexistente no pide token.
func TestRutaInexistente_SinToken_Retorna404(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/no-existe", "/api/auth/otra"} {
		resp := doRequest(t, env.app, http.MethodGet, path, "", "")
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "ruta %s", path)
	}

	// Caso 2: las rutas protegidas existentes siguen exigiendo token.
	resp := doRequest(t, env.app, http.MethodGet, "/api/informes", "", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
