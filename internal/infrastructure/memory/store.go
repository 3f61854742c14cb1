// Package memory implementa los puertos de persistencia en memoria, con
// transacciones de todo o nada. Lo usan los tests de aplicación y de HTTP.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/informes"
	"github.com/jhoicas/Consultorio-api/internal/application/usecase"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var (
	_ usecase.ProfileTxRunner = (*Store)(nil)
	_ authz.TxRunner          = (*Store)(nil)
	_ informes.TxRunner       = (*Store)(nil)
)

type state struct {
	permissions   map[string]entity.Permission
	profiles      map[string]entity.Profile
	profilePerms  map[string][]string
	users         map[string]entity.User
	userProfiles  map[string][]string
	informes      map[string]entity.Informe
	patients      map[string]entity.Patient
	psychologists map[string]entity.Psychologist
}

func newState() *state {
	return &state{
		permissions:   map[string]entity.Permission{},
		profiles:      map[string]entity.Profile{},
		profilePerms:  map[string][]string{},
		users:         map[string]entity.User{},
		userProfiles:  map[string][]string{},
		informes:      map[string]entity.Informe{},
		patients:      map[string]entity.Patient{},
		psychologists: map[string]entity.Psychologist{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.permissions {
		c.permissions[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.profilePerms {
		c.profilePerms[k] = append([]string(nil), v...)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.userProfiles {
		c.userProfiles[k] = append([]string(nil), v...)
	}
	for k, v := range s.informes {
		v.PatientIDs = append([]string(nil), v.PatientIDs...)
		c.informes[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.psychologists {
		c.psychologists[k] = v
	}
	return c
}

// Store guarda todo el estado y hace de TxRunner para los use cases.
type Store struct {
	mu   sync.Mutex
	st   *state
	fail map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), fail: map[string]error{}}
}

// FailOn hace que la próxima llamada a op ("ReplacePatients", "ReplaceProfiles"...) falle con err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// view es un adaptador atado al store; dentro de una transacción el lock ya está tomado.
type view struct {
	s  *Store
	tx bool
}

func (v view) read(fn func(st *state)) {
	if !v.tx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn(v.s.st)
}

func (v view) write(op string, fn func(st *state) error) error {
	if !v.tx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	if err, ok := v.s.fail[op]; ok {
		delete(v.s.fail, op)
		return err
	}
	return fn(v.s.st)
}

func (s *Store) run(fn func(v view) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	defer func() {
		if r := recover(); r != nil {
			s.st = snapshot
			err = fmt.Errorf("memory: panic en transacción: %v", r)
			return
		}
		if err != nil {
			s.st = snapshot
		}
	}()
	return fn(view{s: s, tx: true})
}

// RunProfiles implementa usecase.ProfileTxRunner.
func (s *Store) RunProfiles(_ context.Context, fn func(repository.ProfileRepository, repository.PermissionRepository) error) error {
	return s.run(func(v view) error {
		return fn(&ProfileRepo{v}, &PermissionRepo{v})
	})
}

// RunAssignment implementa authz.TxRunner.
func (s *Store) RunAssignment(_ context.Context, fn func(repository.UserRepository, repository.ProfileRepository) error) error {
	return s.run(func(v view) error {
		return fn(&UserRepo{v}, &ProfileRepo{v})
	})
}

// RunInformes implementa informes.TxRunner.
func (s *Store) RunInformes(_ context.Context, fn func(repository.InformeRepository, repository.PatientRepository, repository.PsychologistRepository) error) error {
	return s.run(func(v view) error {
		return fn(&InformeRepo{v}, &PatientRepo{v}, &PsychologistRepo{v})
	})
}

// Repositorios fuera de transacción.

func (s *Store) Permissions() *PermissionRepo     { return &PermissionRepo{view{s: s}} }
func (s *Store) Profiles() *ProfileRepo           { return &ProfileRepo{view{s: s}} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{view{s: s}} }
func (s *Store) Informes() *InformeRepo           { return &InformeRepo{view{s: s}} }
func (s *Store) Patients() *PatientRepo           { return &PatientRepo{view{s: s}} }
func (s *Store) Psychologists() *PsychologistRepo { return &PsychologistRepo{view{s: s}} }
