package memory

import (
	"time"

	"github.com/jhoicas/Consultorio-api/internal/domain/access"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
)

// PermissionID es el id determinista que SeedCatalog asigna a cada código.
func PermissionID(c access.Code) string { return "perm-" + string(c) }

// SeedCatalog carga el catálogo completo de permisos.
func (s *Store) SeedCatalog() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range access.Catalog {
		s.st.permissions[PermissionID(d.Code)] = entity.Permission{
			ID:          PermissionID(d.Code),
			Code:        string(d.Code),
			Name:        d.Name,
			Description: d.Description,
			ModuleID:    "mod-" + d.Module,
			ModuleName:  d.Module,
			ActionID:    "act-" + d.Action,
			ActionName:  d.Action,
		}
	}
	return s
}

// AddProfile crea un perfil con los permisos dados y devuelve su id.
func (s *Store) AddProfile(id, name string, codes ...access.Code) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.st.profiles[id] = entity.Profile{ID: id, Name: name, Description: "perfil " + name, CreatedAt: now, UpdatedAt: now}
	perms := make([]string, 0, len(codes))
	for _, c := range codes {
		perms = append(perms, PermissionID(c))
	}
	s.st.profilePerms[id] = perms
	return id
}

// AddUser registra un usuario activo y le asigna los perfiles.
func (s *Store) AddUser(u entity.User, profileIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
	s.st.userProfiles[u.ID] = append([]string(nil), profileIDs...)
}

// AddPatient registra una ficha de paciente.
func (s *Store) AddPatient(p entity.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.patients[p.ID] = p
}

// AddPsychologist registra una ficha de psicólogo.
func (s *Store) AddPsychologist(p entity.Psychologist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.psychologists[p.ID] = p
}

// AddInforme guarda un informe tal cual.
func (s *Store) AddInforme(inf entity.Informe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inf.PatientIDs = append([]string(nil), inf.PatientIDs...)
	s.st.informes[inf.ID] = inf
}

// ProfileIDsOf devuelve la asignación actual del usuario (para aserciones).
func (s *Store) ProfileIDsOf(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.st.userProfiles[userID]...)
}

// PermissionIDsOf devuelve los permisos actuales del perfil (para aserciones).
func (s *Store) PermissionIDsOf(profileID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.st.profilePerms[profileID]...)
}
