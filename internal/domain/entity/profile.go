package entity

import "time"

// Profile es un conjunto nombrado de permisos asignable a usuarios (un rol).
type Profile struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission // solo se llena en lecturas con detalle
	UsersCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionIDs devuelve los ids de los permisos cargados.
func (p *Profile) PermissionIDs() []string {
	ids := make([]string, 0, len(p.Permissions))
	for _, perm := range p.Permissions {
		ids = append(ids, perm.ID)
	}
	return ids
}
