package access

import "sort"

// PermissionSet es el conjunto de permisos efectivos de un usuario.
type PermissionSet map[Code]struct{}

// NewPermissionSet construye un conjunto con los códigos dados.
func NewPermissionSet(codes ...Code) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// ParseCodes construye un conjunto a partir de strings (claims JWT, columnas).
func ParseCodes(codes []string) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		if c != "" {
			s[Code(c)] = struct{}{}
		}
	}
	return s
}

// Add agrega un código.
func (s PermissionSet) Add(c Code) { s[c] = struct{}{} }

// Has informa si el código está en el conjunto.
func (s PermissionSet) Has(c Code) bool {
	_, ok := s[c]
	return ok
}

// HasAny es el OR lógico sobre codes. Con lista vacía devuelve false.
func (s PermissionSet) HasAny(codes ...Code) bool {
	for _, c := range codes {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// HasAll es el AND lógico sobre codes.
func (s PermissionSet) HasAll(codes ...Code) bool {
	for _, c := range codes {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Union devuelve un conjunto nuevo; no modifica los operandos.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Equal compara por contenido.
func (s PermissionSet) Equal(other PermissionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Has(c) {
			return false
		}
	}
	return true
}

// Codes devuelve los códigos ordenados.
func (s PermissionSet) Codes() []Code {
	out := make([]Code, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings devuelve los códigos ordenados como strings (para claims y DTOs).
func (s PermissionSet) Strings() []string {
	codes := s.Codes()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

// Names devuelve los nombres visibles ordenados.
func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c.DisplayName())
	}
	sort.Strings(out)
	return out
}

// VisibleModules aplica ModuleGates sobre el conjunto.
func (s PermissionSet) VisibleModules() []string {
	var out []string
	for _, g := range ModuleGates {
		if s.HasAny(g.AnyOf...) {
			out = append(out, g.Module)
		}
	}
	return out
}
