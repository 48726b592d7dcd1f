package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/admin"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/careteam"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/inbox"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/vitals"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/platform/db"
)

func TestRegister_EmailCaseInsensitive(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.register(t, "ann", identity.RolePatient)

	_, err := e.identity.Register(ctx, "Ann Again", "ANN@Portal.Test", "x", identity.RolePatient)
	if !errors.Is(err, identity.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity from the unique index, got %v", err)
	}
	c, err := e.identity.Authenticate(ctx, "  Ann@PORTAL.test ", "pw-ann")
	if err != nil || c.Role != identity.RolePatient {
		t.Errorf("expected case-insensitive login, got %+v %v", c, err)
	}
}

func TestApproveAndReject_Idempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	d1 := e.register(t, "d1", identity.RoleDoctor)
	d2 := e.register(t, "d2", identity.RoleDoctor)
	p := e.register(t, "p", identity.RolePatient)

	first, err := e.admin.Approve(ctx, e.root, d1.ID)
	if err != nil || !first {
		t.Fatalf("first approve: %v %v", first, err)
	}
	if again, err := e.admin.Approve(ctx, e.root, d1.ID); err != nil || again {
		t.Errorf("second approve must be a no-op, got %v %v", again, err)
	}
	acct, _ := e.identity.GetAccount(ctx, d1.ID)
	if acct.Status != identity.StatusApproved {
		t.Errorf("expected approved, got %s", acct.Status)
	}

	if _, err := e.careteam.Assign(ctx, d2.ID, p.ID); err != nil {
		t.Fatalf("assign pending doctor: %v", err)
	}
	if ok, err := e.admin.Reject(ctx, e.root, d2.ID); err != nil || !ok {
		t.Fatalf("reject: %v %v", ok, err)
	}
	if ok, _ := e.admin.Reject(ctx, e.root, d2.ID); ok {
		t.Error("second reject must affect nothing")
	}
	if _, err := e.identity.GetAccount(ctx, d2.ID); !errors.Is(err, identity.ErrAccountNotFound) {
		t.Errorf("rejected doctor must be gone, got %v", err)
	}
	if assigned, _ := e.careteam.IsAssigned(ctx, d2.ID, p.ID); assigned {
		t.Error("ON DELETE CASCADE must remove the rejected doctor's assignments")
	}

	if ok, _ := e.admin.Reject(ctx, e.root, d1.ID); ok {
		t.Error("an approved doctor must not be rejectable")
	}
}

func TestIsAssigned_OnlyExplicitPairs(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	d1 := e.approvedDoctor(t, "d1")
	d2 := e.approvedDoctor(t, "d2")
	p1 := e.register(t, "p1", identity.RolePatient)
	p2 := e.register(t, "p2", identity.RolePatient)

	if _, err := e.careteam.Assign(ctx, d1.ID, p1.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := e.careteam.Assign(ctx, d1.ID, p1.ID); !errors.Is(err, careteam.ErrDuplicateAssignment) {
		t.Errorf("expected ErrDuplicateAssignment from the primary key, got %v", err)
	}

	cases := []struct {
		name string
		d, p uuid.UUID
		want bool
	}{
		{"assigned", d1.ID, p1.ID, true},
		{"other doctor", d2.ID, p1.ID, false},
		{"other patient", d1.ID, p2.ID, false},
		{"neither", d2.ID, p2.ID, false},
		{"reversed", p1.ID, d1.ID, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := e.careteam.IsAssigned(ctx, c.d, c.p)
			if err != nil || got != c.want {
				t.Errorf("IsAssigned = %v %v, want %v", got, err, c.want)
			}
		})
	}

	if ok, _ := e.careteam.Unassign(ctx, d1.ID, p1.ID); !ok {
		t.Fatal("unassign should remove the pair")
	}
	if got, _ := e.careteam.IsAssigned(ctx, d1.ID, p1.ID); got {
		t.Error("pair must be gone after unassign")
	}
}

func TestHistory_OrderAndPaging(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := e.register(t, "p", identity.RolePatient)

	// Repeated offsets give equal timestamps, so ties must break the same way
	// on every page.
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	offsets := []int{4, 0, 2, 2, 7, 1, 4, 4, 3, 0, 6, 2, 5}
	for _, off := range offsets {
		v := vitals.Vitals{Systolic: 120, Diastolic: 80, Sugar: 95, HeartRate: 72}
		if _, err := e.vitals.Backfill(ctx, p.ID, v, base.Add(time.Duration(off)*time.Hour)); err != nil {
			t.Fatalf("backfill: %v", err)
		}
	}

	var full []*vitals.HealthRecord
	for r, err := range e.vitals.History(ctx, p.ID, 1000) {
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		full = append(full, r)
	}
	if len(full) != len(offsets) {
		t.Fatalf("expected %d records, got %d", len(offsets), len(full))
	}
	for i := 1; i < len(full); i++ {
		if full[i].CreatedAt.After(full[i-1].CreatedAt) {
			t.Fatalf("history not newest first at %d", i)
		}
	}

	for k := 1; k <= len(offsets)+1; k++ {
		t.Run(fmt.Sprintf("page size %d", k), func(t *testing.T) {
			i := 0
			for r, err := range e.vitals.History(ctx, p.ID, k) {
				if err != nil {
					t.Fatalf("history: %v", err)
				}
				if r.ID != full[i].ID {
					t.Fatalf("position %d differs from unpaginated order", i)
				}
				i++
			}
			if i != len(full) {
				t.Errorf("expected %d records, got %d", len(full), i)
			}

			pos := 0
			for off := 0; ; off += k {
				page, total, err := e.vitals.Page(ctx, p.ID, k, off)
				if err != nil {
					t.Fatalf("page: %v", err)
				}
				if total != len(full) {
					t.Fatalf("expected total %d, got %d", len(full), total)
				}
				for _, r := range page {
					if r.ID != full[pos].ID {
						t.Fatalf("offset paging differs at %d", pos)
					}
					pos++
				}
				if len(page) < k {
					break
				}
			}
			if pos != len(full) {
				t.Errorf("offset paging returned %d records, want %d", pos, len(full))
			}
		})
	}
}

func TestDeleteAccount_Cascades(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	d := e.approvedDoctor(t, "d")
	p := e.register(t, "p", identity.RolePatient)
	other := e.register(t, "other", identity.RolePatient)
	e.careteam.Assign(ctx, d.ID, p.ID)
	e.careteam.Assign(ctx, d.ID, other.ID)

	for i := 0; i < 5; i++ {
		if _, err := e.vitals.Submit(ctx, patientCaller(p), healthy); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := e.vitals.Submit(ctx, patientCaller(other), healthy); err != nil {
		t.Fatalf("submit other: %v", err)
	}
	if _, err := e.inbox.Send(ctx, d.ID, p.ID, "one"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := e.inbox.Send(ctx, d.ID, other.ID, "two"); err != nil {
		t.Fatalf("send other: %v", err)
	}

	deleted, err := e.identity.DeleteAccount(ctx, e.root, p.ID)
	if err != nil || !deleted {
		t.Fatalf("delete: %v %v", deleted, err)
	}

	if _, total, _ := e.vitals.Page(ctx, p.ID, 10, 0); total != 0 {
		t.Errorf("expected no records for deleted patient, got %d", total)
	}
	if n, _ := e.vitals.CountRecords(ctx); n != 1 {
		t.Errorf("expected only the other patient's record, got %d", n)
	}
	if n, _ := e.careteam.CountAssignments(ctx); n != 1 {
		t.Errorf("expected 1 assignment left, got %d", n)
	}
	sent, _ := e.inbox.ListSentBy(ctx, d.ID, inbox.Filter{})
	if len(sent) != 1 || sent[0].PatientID != other.ID {
		t.Errorf("expected only the other patient's alert, got %+v", sent)
	}

	if ok, _ := e.identity.DeleteAccount(ctx, e.root, d.ID); !ok {
		t.Fatal("delete doctor should apply")
	}
	if got, _ := e.inbox.ListForPatient(ctx, other.ID); len(got) != 0 {
		t.Errorf("expected alerts from deleted doctor to be gone, got %d", len(got))
	}
	if n, _ := e.careteam.CountAssignments(ctx); n != 0 {
		t.Errorf("expected no assignments left, got %d", n)
	}
	if again, _ := e.identity.DeleteAccount(ctx, e.root, d.ID); again {
		t.Error("deleting twice must be a no-op")
	}
}

func TestInserts_RejectDanglingReferences(t *testing.T) {
	pool := newSchemaPool(t)
	ctx := context.Background()
	ghost := uuid.New()

	err := vitals.NewRecordRepoPG(pool).Create(ctx, &vitals.HealthRecord{
		PatientID: ghost, Systolic: 120, Diastolic: 80, Sugar: 95, HeartRate: 72,
		Wellness: vitals.WellnessHealthy, CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, identity.ErrUnknownAccount) {
		t.Errorf("record: expected ErrUnknownAccount, got %v", err)
	}
	err = inbox.NewAlertRepoPG(pool).Create(ctx, &inbox.Alert{
		DoctorID: ghost, PatientID: ghost, Message: "x", State: inbox.StateSent, CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, identity.ErrUnknownAccount) {
		t.Errorf("alert: expected ErrUnknownAccount, got %v", err)
	}
	err = careteam.NewAssignmentRepoPG(pool).Create(ctx, &careteam.Assignment{
		DoctorID: ghost, PatientID: ghost, CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, identity.ErrUnknownAccount) {
		t.Errorf("assignment: expected ErrUnknownAccount, got %v", err)
	}
}

func TestSnapshotRunner_RejectsWrites(t *testing.T) {
	e := newEngine(t)

	err := db.NewSnapshotRunner(e.pool).InTx(context.Background(), func(ctx context.Context) error {
		return identity.NewAccountRepoPG(e.pool).Create(ctx, &identity.Account{
			Name: "x", Email: "x@portal.test", Credential: "x",
			Role: identity.RolePatient, Status: identity.StatusApproved, CreatedAt: time.Now().UTC(),
		})
	})
	if err == nil {
		t.Fatal("expected a read-only transaction to refuse the insert")
	}
	if _, err := e.identity.Authenticate(context.Background(), "x@portal.test", "x"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("refused insert must leave no account behind, got %v", err)
	}
}

func TestStats(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	d := e.approvedDoctor(t, "d")
	e.register(t, "pending", identity.RoleDoctor)
	p := e.register(t, "p", identity.RolePatient)
	e.careteam.Assign(ctx, d.ID, p.ID)
	e.vitals.Submit(ctx, patientCaller(p), healthy)
	a, err := e.inbox.Send(ctx, d.ID, p.ID, "one")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	e.inbox.Send(ctx, d.ID, p.ID, "two")
	e.inbox.MarkSeen(ctx, p.ID, a.ID)

	st, err := e.admin.Stats(ctx, e.root)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := admin.Stats{Patients: 1, Doctors: 1, PendingDoctors: 1, Admins: 1, Assignments: 1, Records: 1, AlertsSent: 1, AlertsSeen: 1}
	if *st != want {
		t.Errorf("expected %+v, got %+v", want, *st)
	}
}
