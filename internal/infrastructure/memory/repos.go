package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var (
	_ repository.PermissionRepository   = (*PermissionRepo)(nil)
	_ repository.ProfileRepository      = (*ProfileRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.InformeRepository      = (*InformeRepo)(nil)
	_ repository.PatientRepository      = (*PatientRepo)(nil)
	_ repository.PsychologistRepository = (*PsychologistRepo)(nil)
)

// ── Permisos ──────────────────────────────────────────────────────────────────

type PermissionRepo struct{ v view }

func (r *PermissionRepo) List(_ context.Context) ([]*entity.Permission, error) {
	var out []*entity.Permission
	r.v.read(func(st *state) {
		for _, p := range st.permissions {
			p := p
			out = append(out, &p)
		}
	})
	sortPermissions(out)
	return out, nil
}

func (r *PermissionRepo) GetByName(_ context.Context, name string) (*entity.Permission, error) {
	var out *entity.Permission
	r.v.read(func(st *state) {
		for _, p := range st.permissions {
			if p.Name == name {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *PermissionRepo) GetByCode(_ context.Context, code string) (*entity.Permission, error) {
	var out *entity.Permission
	r.v.read(func(st *state) {
		for _, p := range st.permissions {
			if p.Code == code {
				p := p
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r *PermissionRepo) ListByModule(_ context.Context, moduleName string) ([]*entity.Permission, error) {
	var out []*entity.Permission
	r.v.read(func(st *state) {
		for _, p := range st.permissions {
			if p.ModuleName == moduleName {
				p := p
				out = append(out, &p)
			}
		}
	})
	sortPermissions(out)
	return out, nil
}

func (r *PermissionRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var out []string
	r.v.read(func(st *state) {
		for _, id := range ids {
			if _, ok := st.permissions[id]; ok {
				out = append(out, id)
			}
		}
	})
	return out, nil
}

func sortPermissions(list []*entity.Permission) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ModuleName != list[j].ModuleName {
			return list[i].ModuleName < list[j].ModuleName
		}
		return list[i].Name < list[j].Name
	})
}

// ── Perfiles ──────────────────────────────────────────────────────────────────

type ProfileRepo struct{ v view }

func (st *state) loadProfile(p entity.Profile) *entity.Profile {
	p.Permissions = nil
	for _, pid := range st.profilePerms[p.ID] {
		if perm, ok := st.permissions[pid]; ok {
			p.Permissions = append(p.Permissions, perm)
		}
	}
	sort.Slice(p.Permissions, func(i, j int) bool { return p.Permissions[i].Name < p.Permissions[j].Name })
	p.UsersCount = 0
	for _, assigned := range st.userProfiles {
		if slices.Contains(assigned, p.ID) {
			p.UsersCount++
		}
	}
	return &p
}

func (st *state) nameTaken(name, exceptID string) bool {
	for _, p := range st.profiles {
		if p.Name == name && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *ProfileRepo) Create(_ context.Context, p *entity.Profile) error {
	return r.v.write("CreateProfile", func(st *state) error {
		if st.nameTaken(p.Name, "") {
			return domain.ErrDuplicateName
		}
		cp := *p
		cp.Permissions = nil
		st.profiles[p.ID] = cp
		return nil
	})
}

func (r *ProfileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	var out *entity.Profile
	r.v.read(func(st *state) {
		if p, ok := st.profiles[id]; ok {
			out = st.loadProfile(p)
		}
	})
	return out, nil
}

func (r *ProfileRepo) GetByName(_ context.Context, name string) (*entity.Profile, error) {
	var out *entity.Profile
	r.v.read(func(st *state) {
		for _, p := range st.profiles {
			if p.Name == name {
				out = st.loadProfile(p)
				return
			}
		}
	})
	return out, nil
}

func (r *ProfileRepo) List(_ context.Context) ([]*entity.Profile, error) {
	var out []*entity.Profile
	r.v.read(func(st *state) {
		for _, p := range st.profiles {
			out = append(out, st.loadProfile(p))
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProfileRepo) Update(_ context.Context, p *entity.Profile) error {
	return r.v.write("UpdateProfile", func(st *state) error {
		cur, ok := st.profiles[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if st.nameTaken(p.Name, p.ID) {
			return domain.ErrDuplicateName
		}
		cur.Name, cur.Description, cur.UpdatedAt = p.Name, p.Description, p.UpdatedAt
		st.profiles[p.ID] = cur
		return nil
	})
}

func (r *ProfileRepo) Delete(_ context.Context, id string) error {
	return r.v.write("DeleteProfile", func(st *state) error {
		p, ok := st.profiles[id]
		if !ok {
			return domain.ErrNotFound
		}
		if n := st.loadProfile(p).UsersCount; n > 0 {
			return &domain.HasDependentsError{Kind: "usuarios", Count: n}
		}
		delete(st.profiles, id)
		delete(st.profilePerms, id)
		return nil
	})
}

func (r *ProfileRepo) CountUsers(_ context.Context, id string) (int, error) {
	n := 0
	r.v.read(func(st *state) {
		for _, assigned := range st.userProfiles {
			if slices.Contains(assigned, id) {
				n++
			}
		}
	})
	return n, nil
}

func (r *ProfileRepo) ReplacePermissions(_ context.Context, profileID string, permissionIDs []string) error {
	return r.v.write("ReplacePermissions", func(st *state) error {
		if _, ok := st.profiles[profileID]; !ok {
			return domain.ErrNotFound
		}
		st.profilePerms[profileID] = append([]string(nil), permissionIDs...)
		return nil
	})
}

func (r *ProfileRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var out []string
	r.v.read(func(st *state) {
		for _, id := range ids {
			if _, ok := st.profiles[id]; ok {
				out = append(out, id)
			}
		}
	})
	return out, nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

type UserRepo struct{ v view }

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r *UserRepo) ListProfiles(_ context.Context, userID string) ([]*entity.Profile, error) {
	var out []*entity.Profile
	r.v.read(func(st *state) {
		for _, pid := range st.userProfiles[userID] {
			if p, ok := st.profiles[pid]; ok {
				out = append(out, st.loadProfile(p))
			}
		}
	})
	return out, nil
}

func (r *UserRepo) ReplaceProfiles(_ context.Context, userID string, profileIDs []string) error {
	return r.v.write("ReplaceProfiles", func(st *state) error {
		if _, ok := st.users[userID]; !ok {
			return domain.ErrUserNotFound
		}
		st.userProfiles[userID] = append([]string(nil), profileIDs...)
		return nil
	})
}

func (r *UserRepo) RemoveProfile(_ context.Context, userID, profileID string) (bool, error) {
	removed := false
	err := r.v.write("RemoveProfile", func(st *state) error {
		cur := st.userProfiles[userID]
		i := slices.Index(cur, profileID)
		if i < 0 {
			return nil
		}
		st.userProfiles[userID] = slices.Delete(slices.Clone(cur), i, i+1)
		removed = true
		return nil
	})
	return removed, err
}

// ── Informes ──────────────────────────────────────────────────────────────────

type InformeRepo struct{ v view }

func copyInforme(inf entity.Informe) *entity.Informe {
	inf.PatientIDs = append([]string(nil), inf.PatientIDs...)
	return &inf
}

func (r *InformeRepo) GetByID(_ context.Context, id string) (*entity.Informe, error) {
	var out *entity.Informe
	r.v.read(func(st *state) {
		if inf, ok := st.informes[id]; ok {
			out = copyInforme(inf)
		}
	})
	return out, nil
}

func (r *InformeRepo) Save(_ context.Context, inf *entity.Informe) error {
	return r.v.write("SaveInforme", func(st *state) error {
		cp := *inf
		if cur, ok := st.informes[inf.ID]; ok {
			cp.PatientIDs = cur.PatientIDs
			cp.CreatedAt = cur.CreatedAt
		} else {
			cp.PatientIDs = nil
		}
		st.informes[inf.ID] = cp
		return nil
	})
}

func (r *InformeRepo) ReplacePatients(_ context.Context, informeID string, patientIDs []string) error {
	return r.v.write("ReplacePatients", func(st *state) error {
		cur, ok := st.informes[informeID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, id := range patientIDs {
			if _, ok := st.patients[id]; !ok {
				return &domain.InvalidReferenceError{Kind: "paciente", IDs: []string{id}}
			}
		}
		cur.PatientIDs = append([]string(nil), patientIDs...)
		st.informes[informeID] = cur
		return nil
	})
}

func (r *InformeRepo) Delete(_ context.Context, id string) error {
	return r.v.write("DeleteInforme", func(st *state) error {
		if _, ok := st.informes[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.informes, id)
		return nil
	})
}

func (r *InformeRepo) ListCandidates(_ context.Context, psychologistID, patientID string) ([]*entity.Informe, error) {
	var out []*entity.Informe
	r.v.read(func(st *state) {
		for _, inf := range st.informes {
			owner := psychologistID != "" && inf.PsychologistID == psychologistID
			if owner || inf.HasPatient(patientID) {
				out = append(out, copyInforme(inf))
			}
		}
	})
	sortInformes(out)
	return out, nil
}

func (r *InformeRepo) ListAll(_ context.Context) ([]*entity.Informe, error) {
	var out []*entity.Informe
	r.v.read(func(st *state) {
		for _, inf := range st.informes {
			out = append(out, copyInforme(inf))
		}
	})
	sortInformes(out)
	return out, nil
}

func sortInformes(list []*entity.Informe) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// ── Pacientes y psicólogos ────────────────────────────────────────────────────

type PatientRepo struct{ v view }

func (r *PatientRepo) Exists(_ context.Context, id string) (bool, error) {
	ok := false
	r.v.read(func(st *state) { _, ok = st.patients[id] })
	return ok, nil
}

func (r *PatientRepo) MissingIDs(_ context.Context, ids []string) ([]string, error) {
	var out []string
	r.v.read(func(st *state) {
		for _, id := range ids {
			if _, ok := st.patients[id]; !ok {
				out = append(out, id)
			}
		}
	})
	return out, nil
}

func (r *PatientRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Patient, error) {
	var out []*entity.Patient
	r.v.read(func(st *state) {
		for _, id := range ids {
			if p, ok := st.patients[id]; ok {
				p := p
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

type PsychologistRepo struct{ v view }

func (r *PsychologistRepo) GetByID(_ context.Context, id string) (*entity.Psychologist, error) {
	var out *entity.Psychologist
	r.v.read(func(st *state) {
		if p, ok := st.psychologists[id]; ok {
			out = &p
		}
	})
	return out, nil
}
