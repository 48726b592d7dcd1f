package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/vitals"
)

type recordRepo struct{ s *Store }

func (r recordRepo) Create(ctx context.Context, rec *vitals.HealthRecord) error {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !r.s.exists(rec.PatientID) {
		return identity.ErrUnknownAccount
	}
	rec.ID = uuid.New()
	rec.Seq = r.s.nextSeq()
	cp := *rec
	r.s.records[rec.ID] = &cp
	return nil
}

// history returns copies of the patient's records, newest first.
func (r recordRepo) history(patientID uuid.UUID) []*vitals.HealthRecord {
	var out []*vitals.HealthRecord
	for _, rec := range r.s.records {
		if rec.PatientID == patientID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq > out[j].Seq
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r recordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*vitals.HealthRecord, int, error) {
	defer r.s.read(ctx)()
	all := r.history(patientID)
	return window(all, limit, offset), len(all), nil
}

func (r recordRepo) ListByPatientAfter(ctx context.Context, patientID uuid.UUID, after vitals.Cursor, limit int) ([]*vitals.HealthRecord, error) {
	defer r.s.read(ctx)()
	var out []*vitals.HealthRecord
	for _, rec := range r.history(patientID) {
		if !after.Admits(rec) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r recordRepo) Count(ctx context.Context) (int, error) {
	defer r.s.read(ctx)()
	return len(r.s.records), nil
}
