package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

type assignmentRepo struct{ s *Store }

func (r assignmentRepo) Create(ctx context.Context, a *careteam.Assignment) error {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !r.s.exists(a.DoctorID, a.PatientID) {
		return identity.ErrUnknownAccount
	}
	k := pair{a.DoctorID, a.PatientID}
	if _, dup := r.s.assignments[k]; dup {
		return careteam.ErrDuplicateAssignment
	}
	cp := *a
	r.s.assignments[k] = &cp
	return nil
}

func (r assignmentRepo) Delete(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	k := pair{doctorID, patientID}
	if _, ok := r.s.assignments[k]; !ok {
		return false, nil
	}
	delete(r.s.assignments, k)
	return true, nil
}

func (r assignmentRepo) Exists(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	defer r.s.read(ctx)()
	_, ok := r.s.assignments[pair{doctorID, patientID}]
	return ok, nil
}

func (r assignmentRepo) ListPatients(ctx context.Context, doctorID uuid.UUID) ([]*careteam.PatientSummary, error) {
	defer r.s.read(ctx)()

	var out []*careteam.PatientSummary
	for k, asg := range r.s.assignments {
		if k.doctor != doctorID {
			continue
		}
		p := r.s.accounts[k.patient]
		ps := &careteam.PatientSummary{
			PatientID:  p.ID,
			Name:       p.Name,
			Email:      p.Email,
			AssignedAt: asg.CreatedAt,
		}
		for _, rec := range r.s.records {
			if rec.PatientID != p.ID {
				continue
			}
			ps.RecordCount++
			if ps.LastRecordAt == nil || rec.CreatedAt.After(*ps.LastRecordAt) {
				at := rec.CreatedAt
				ps.LastRecordAt = &at
			}
		}
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].PatientID.String() < out[j].PatientID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r assignmentRepo) ListDoctors(ctx context.Context, patientID uuid.UUID) ([]*careteam.DoctorSummary, error) {
	defer r.s.read(ctx)()

	var out []*careteam.DoctorSummary
	for k, asg := range r.s.assignments {
		if k.patient != patientID {
			continue
		}
		d := r.s.accounts[k.doctor]
		out = append(out, &careteam.DoctorSummary{
			DoctorID:   d.ID,
			Name:       d.Name,
			Email:      d.Email,
			AssignedAt: asg.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].DoctorID.String() < out[j].DoctorID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r assignmentRepo) Count(ctx context.Context) (int, error) {
	defer r.s.read(ctx)()
	return len(r.s.assignments), nil
}
