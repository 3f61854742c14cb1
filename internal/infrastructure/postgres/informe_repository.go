package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/entity"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
)

var (
	_ repository.InformeRepository      = (*InformeRepo)(nil)
	_ repository.PatientRepository      = (*PatientRepo)(nil)
	_ repository.PsychologistRepository = (*PsychologistRepo)(nil)
)

const informeSelect = `
	SELECT i.id, i.title, i.content, i.private, i.psychologist_id, i.created_at, i.updated_at
	FROM informes i`

// InformeRepo implementación de InformeRepository sobre PostgreSQL (usable con pool o tx).
type InformeRepo struct {
	q Querier
}

// NewInformeRepository construye el adaptador de informes. Pasar pool o tx (Querier).
func NewInformeRepository(q Querier) *InformeRepo {
	return &InformeRepo{q: q}
}

func scanInforme(s scanner, inf *entity.Informe) error {
	return s.Scan(&inf.ID, &inf.Title, &inf.Content, &inf.Private, &inf.PsychologistID, &inf.CreatedAt, &inf.UpdatedAt)
}

// GetByID devuelve el informe con sus pacientes, o (nil, nil).
func (r *InformeRepo) GetByID(ctx context.Context, id string) (*entity.Informe, error) {
	var inf entity.Informe
	if err := scanInforme(r.q.QueryRow(ctx, informeSelect+` WHERE i.id = $1`, id), &inf); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get informe: %w", err)
	}
	if err := r.loadPatients(ctx, []*entity.Informe{&inf}); err != nil {
		return nil, err
	}
	return &inf, nil
}

// Save inserta o actualiza los campos del informe; no toca los pacientes.
func (r *InformeRepo) Save(ctx context.Context, inf *entity.Informe) error {
	query := `
		INSERT INTO informes (id, title, content, private, psychologist_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			private = EXCLUDED.private,
			psychologist_id = EXCLUDED.psychologist_id,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		inf.ID, inf.Title, inf.Content, inf.Private, inf.PsychologistID, inf.CreatedAt, inf.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.InvalidReferenceError{Kind: "psicólogo", IDs: []string{inf.PsychologistID}}
		}
		return fmt.Errorf("save informe: %w", err)
	}
	return nil
}

// ReplacePatients reemplaza los pacientes conservando el orden recibido. Debe ir en transacción.
func (r *InformeRepo) ReplacePatients(ctx context.Context, informeID string, patientIDs []string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM informes WHERE id = $1)`, informeID).Scan(&exists); err != nil {
		return fmt.Errorf("check informe: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM informe_patients WHERE informe_id = $1`, informeID); err != nil {
		return fmt.Errorf("clear informe patients: %w", err)
	}
	if len(patientIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO informe_patients (informe_id, patient_id, position)
		SELECT $1, u.id, u.ord FROM unnest($2::text[]) WITH ORDINALITY AS u(id, ord)
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, informeID, patientIDs); err != nil {
		if isForeignKeyViolation(err) {
			return &domain.InvalidReferenceError{Kind: "paciente", IDs: patientIDs}
		}
		return fmt.Errorf("insert informe patients: %w", err)
	}
	return nil
}

// Delete elimina el informe; sus pacientes caen en cascada.
func (r *InformeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM informes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete informe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCandidates devuelve los informes del psicólogo y los asociados al paciente.
func (r *InformeRepo) ListCandidates(ctx context.Context, psychologistID, patientID string) ([]*entity.Informe, error) {
	query := informeSelect + `
		WHERE ($1 <> '' AND i.psychologist_id = $1)
		   OR ($2 <> '' AND EXISTS (
				SELECT 1 FROM informe_patients ip WHERE ip.informe_id = i.id AND ip.patient_id = $2))
		ORDER BY i.created_at DESC, i.id`
	return r.list(ctx, query, psychologistID, patientID)
}

// ListAll devuelve todos los informes, más recientes primero.
func (r *InformeRepo) ListAll(ctx context.Context) ([]*entity.Informe, error) {
	return r.list(ctx, informeSelect+` ORDER BY i.created_at DESC, i.id`)
}

func (r *InformeRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Informe, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list informes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Informe
	for rows.Next() {
		var inf entity.Informe
		if err := scanInforme(rows, &inf); err != nil {
			return nil, fmt.Errorf("scan informe: %w", err)
		}
		list = append(list, &inf)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadPatients(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *InformeRepo) loadPatients(ctx context.Context, list []*entity.Informe) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Informe, len(list))
	ids := make([]string, 0, len(list))
	for _, inf := range list {
		byID[inf.ID] = inf
		ids = append(ids, inf.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT informe_id, patient_id FROM informe_patients
		WHERE informe_id = ANY($1)
		ORDER BY informe_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load informe patients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var informeID, patientID string
		if err := rows.Scan(&informeID, &patientID); err != nil {
			return fmt.Errorf("scan informe patient: %w", err)
		}
		if inf := byID[informeID]; inf != nil {
			inf.PatientIDs = append(inf.PatientIDs, patientID)
		}
	}
	return rows.Err()
}

// ── Pacientes y psicólogos ────────────────────────────────────────────────────

// PatientRepo consulta fichas de paciente.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

// Exists informa si el paciente existe.
func (r *PatientRepo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check patient: %w", err)
	}
	return ok, nil
}

// MissingIDs devuelve los ids inexistentes en el orden recibido.
func (r *PatientRepo) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, r.q, "patients", ids)
}

// ListByIDs devuelve las fichas existentes en el orden recibido.
func (r *PatientRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.user_id, p.name
		FROM unnest($1::text[]) WITH ORDINALITY AS u(id, ord)
		JOIN patients p ON p.id = u.id
		ORDER BY u.ord`, ids)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Patient
	for rows.Next() {
		var p entity.Patient
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// PsychologistRepo consulta fichas de psicólogo.
type PsychologistRepo struct {
	q Querier
}

// NewPsychologistRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPsychologistRepository(q Querier) *PsychologistRepo {
	return &PsychologistRepo{q: q}
}

// GetByID devuelve la ficha o (nil, nil).
func (r *PsychologistRepo) GetByID(ctx context.Context, id string) (*entity.Psychologist, error) {
	var p entity.Psychologist
	err := r.q.QueryRow(ctx, `SELECT id, user_id, name FROM psychologists WHERE id = $1`, id).Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get psychologist: %w", err)
	}
	return &p, nil
}
