package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/inbox"
)

func TestScenario_DoctorOnboardingToAcknowledgedAlert(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	d, err := e.identity.Register(ctx, "Dr. Dee", "dee@clinic.test", "s3cret", identity.RoleDoctor)
	if err != nil {
		t.Fatalf("register doctor: %v", err)
	}
	if d.Status != identity.StatusPending {
		t.Fatalf("expected pending, got %s", d.Status)
	}
	p := e.register(t, "pat", identity.RolePatient)

	if _, err := e.identity.Authenticate(ctx, "dee@clinic.test", "s3cret"); !errors.Is(err, identity.ErrPendingApproval) {
		t.Fatalf("expected ErrPendingApproval, got %v", err)
	}
	if _, err := e.identity.Authenticate(ctx, "dee@clinic.test", "wrong"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong secret, got %v", err)
	}

	if ok, err := e.admin.Approve(ctx, e.root, d.ID); err != nil || !ok {
		t.Fatalf("approve: %v %v", ok, err)
	}
	caller, err := e.identity.Authenticate(ctx, "dee@clinic.test", "s3cret")
	if err != nil || caller.Role != identity.RoleDoctor {
		t.Fatalf("expected doctor login, got %+v %v", caller, err)
	}
	if dec := identity.AuthorizeAreaAccess(caller.Role, identity.AreaDoctor); !dec.Allowed {
		t.Fatal("doctor must enter the doctor area")
	}

	if _, err := e.careteam.Assign(ctx, d.ID, p.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	a, err := e.inbox.Send(ctx, caller.ID, p.ID, "check your BP")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if a.State != inbox.StateSent {
		t.Fatalf("expected sent, got %s", a.State)
	}

	if ok, err := e.inbox.MarkSeen(ctx, p.ID, a.ID); err != nil || !ok {
		t.Fatalf("mark seen: %v %v", ok, err)
	}
	if ok, err := e.inbox.MarkSeen(ctx, p.ID, a.ID); err != nil || ok {
		t.Fatalf("second mark seen must be a no-op, got %v %v", ok, err)
	}
	got, _ := e.inbox.ListForPatient(ctx, p.ID)
	if len(got) != 1 || got[0].State != inbox.StateSeen {
		t.Fatalf("expected one seen alert, got %+v", got)
	}
	sent, _ := e.inbox.ListSentBy(ctx, d.ID, inbox.Filter{State: inbox.StateSeen})
	if len(sent) != 1 || sent[0].PatientName != "pat" {
		t.Errorf("expected the doctor to see the acknowledgement, got %+v", sent)
	}
}
