// seed genera el script SQL que siembra módulos, acciones, el catálogo de
// permisos y los perfiles por defecto a partir de access.Catalog.
//
// Uso: go run ./cmd/seed [ruta/salida.sql]
// Por defecto escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
//
// El script es idempotente: re-ejecutarlo actualiza nombres y descripciones del
// catálogo por código y no toca perfiles que ya existan.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Consultorio-api/internal/domain/access"
)

func main() {
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := render(out, access.Catalog, access.DefaultProfiles); err != nil {
		fmt.Fprintf(os.Stderr, "Generar SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d permisos, %d perfiles\n", outPath, len(access.Catalog), len(access.DefaultProfiles))
}

func render(w io.Writer, catalog []access.Definition, profiles []access.DefaultProfile) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de permisos y perfiles por defecto.\n")
	b.WriteString("-- Generado por cmd/seed a partir de access.Catalog; no editar a mano.\n\n")

	modules, actions := distinct(catalog)

	b.WriteString("-- 1. Módulos\n")
	writeNamed(&b, "modules", "mod-", modules)
	b.WriteString("-- 2. Acciones\n")
	writeNamed(&b, "actions", "act-", actions)

	b.WriteString("-- 3. Permisos (el código es estable; nombre y descripción se actualizan)\n")
	b.WriteString("INSERT INTO permissions (id, code, name, description, module_id, action_id) VALUES\n")
	for i, d := range catalog {
		fmt.Fprintf(&b, "  ('perm-%s', '%s', '%s', '%s', 'mod-%s', 'act-%s')%s\n",
			d.Code, d.Code, escapeSQL(d.Name), escapeSQL(d.Description), slug(d.Module), slug(d.Action), sep(i, len(catalog)))
	}
	b.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description;\n\n")

	b.WriteString("-- 4. Perfiles por defecto (solo si no existen)\n")
	for _, p := range profiles {
		codes := make([]string, len(p.Codes))
		for i, c := range p.Codes {
			codes[i] = "'" + string(c) + "'"
		}
		fmt.Fprintf(&b, "WITH created AS (\n")
		fmt.Fprintf(&b, "  INSERT INTO profiles (id, name, description) VALUES ('%s', '%s', '%s')\n",
			p.ID, escapeSQL(p.Name), escapeSQL(p.Description))
		b.WriteString("  ON CONFLICT DO NOTHING\n")
		b.WriteString("  RETURNING id\n")
		b.WriteString(")\n")
		b.WriteString("INSERT INTO profile_permissions (profile_id, permission_id)\n")
		b.WriteString("SELECT created.id, p.id FROM created, permissions p\n")
		fmt.Fprintf(&b, "WHERE p.code IN (%s);\n\n", strings.Join(codes, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// distinct devuelve módulos y acciones en orden de primera aparición.
func distinct(catalog []access.Definition) (modules, actions []string) {
	seenM, seenA := map[string]bool{}, map[string]bool{}
	for _, d := range catalog {
		if !seenM[d.Module] {
			seenM[d.Module] = true
			modules = append(modules, d.Module)
		}
		if !seenA[d.Action] {
			seenA[d.Action] = true
			actions = append(actions, d.Action)
		}
	}
	return modules, actions
}

func writeNamed(b *strings.Builder, table, prefix string, names []string) {
	fmt.Fprintf(b, "INSERT INTO %s (id, name) VALUES\n", table)
	for i, n := range names {
		fmt.Fprintf(b, "  ('%s%s', '%s')%s\n", prefix, slug(n), escapeSQL(n), sep(i, len(names)))
	}
	b.WriteString("ON CONFLICT (name) DO NOTHING;\n\n")
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

// slug pasa a minúsculas y quita tildes: "Psicólogos" -> "psicologos".
func slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.ReplaceAll(out, " ", "_"))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
