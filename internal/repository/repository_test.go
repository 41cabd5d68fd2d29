package repository

import (
	"context"
	"testing"
	"time"

	"bookingcore/internal/infra/persistence/memory"
	"bookingcore/pkg/domain"
)

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestSet(t *testing.T) (*Set, *memory.Store) {
	t.Helper()
	medium := memory.NewStore()
	return NewSet(medium, func() time.Time { return fixedNow }), medium
}

func strPtr(s string) *string { return &s }

func TestUsersLookupIgnoresCase(t *testing.T) {
	ctx := context.Background()
	set, _ := newTestSet(t)
	if _, err := set.Users.Create(ctx, domain.UserAccount{ID: "usr_1", Email: "alice@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	acc, ok, err := set.Users.FindByEmail(ctx, "ALICE@Example.com")
	if err != nil || !ok || acc.ID != "usr_1" {
		t.Fatalf("find by email: %+v %v %v", acc, ok, err)
	}
	if exists, _ := set.Users.EmailExists(ctx, "bob@example.com"); exists {
		t.Fatalf("unexpected account")
	}
	updated, ok, err := set.Users.UpdateLastLogin(ctx, "Alice@example.com")
	if err != nil || !ok || updated.LastLogin == nil || !updated.LastLogin.Equal(fixedNow) {
		t.Fatalf("update last login: %+v %v %v", updated, ok, err)
	}
	if _, ok, _ := set.Users.UpdateLastLogin(ctx, "nobody@example.com"); ok {
		t.Fatalf("unknown email must report false")
	}
}

func TestServicesSearch(t *testing.T) {
	ctx := context.Background()
	set, _ := newTestSet(t)
	_, _ = set.Services.Create(ctx, domain.Service{ID: "svc_1", Name: "Massage Therapy"})
	_, _ = set.Services.Create(ctx, domain.Service{ID: "svc_2", Name: "Yoga Class", Description: strPtr("Gentle stretching")})
	_, _ = set.Services.Create(ctx, domain.Service{ID: "svc_3", Name: "Sauna"})

	found, _ := set.Services.Search(ctx, "MASSAGE")
	if len(found) != 1 || found[0].ID != "svc_1" {
		t.Fatalf("unexpected name search %+v", found)
	}
	found, _ = set.Services.Search(ctx, "stretch")
	if len(found) != 1 || found[0].ID != "svc_2" {
		t.Fatalf("unexpected description search %+v", found)
	}
	if svc, ok, _ := set.Services.FindByName(ctx, "yoga class"); !ok || svc.ID != "svc_2" {
		t.Fatalf("find by name failed")
	}
	if _, ok, _ := set.Services.FindByName(ctx, "yoga"); ok {
		t.Fatalf("find by name must match the whole name")
	}
}

func TestSlotsFutureFilterIsStrict(t *testing.T) {
	ctx := context.Background()
	set, _ := newTestSet(t)
	for _, s := range []domain.Slot{
		{ID: "past", ServiceID: "svc_1", Datetime: fixedNow.Add(-time.Hour)},
		{ID: "now", ServiceID: "svc_1", Datetime: fixedNow},
		{ID: "soon", ServiceID: "svc_1", Datetime: fixedNow.Add(time.Minute)},
		{ID: "other", ServiceID: "svc_2", Datetime: fixedNow.Add(time.Hour)},
	} {
		if _, err := set.Slots.Create(ctx, s); err != nil {
			t.Fatalf("create slot: %v", err)
		}
	}
	future, _ := set.Slots.FindFuture(ctx)
	if len(future) != 2 || future[0].ID != "soon" || future[1].ID != "other" {
		t.Fatalf("unexpected future slots %+v", future)
	}
	byService, _ := set.Slots.FindFutureByServiceID(ctx, "svc_1")
	if len(byService) != 1 || byService[0].ID != "soon" {
		t.Fatalf("unexpected future slots for service %+v", byService)
	}
	all, _ := set.Slots.FindByServiceID(ctx, "svc_1")
	if len(all) != 3 {
		t.Fatalf("expected 3 slots for svc_1, got %d", len(all))
	}
	n, err := set.Slots.DeleteByServiceID(ctx, "svc_1")
	if err != nil || n != 3 {
		t.Fatalf("delete by service: %d %v", n, err)
	}
	remaining, _ := set.Slots.List(ctx)
	if len(remaining) != 1 || remaining[0].ID != "other" {
		t.Fatalf("unexpected remaining slots %+v", remaining)
	}
}

func TestReservationLookups(t *testing.T) {
	ctx := context.Background()
	set, _ := newTestSet(t)
	for _, r := range []domain.Reservation{
		{ID: "res_1", SlotID: "slt_1", UserEmail: "a@x.io"},
		{ID: "res_2", SlotID: "slt_1", UserEmail: "b@x.io"},
		{ID: "res_3", SlotID: "slt_2", UserEmail: "a@x.io"},
	} {
		_, _ = set.Reservations.Create(ctx, r)
	}
	if n, _ := set.Reservations.CountBySlotID(ctx, "slt_1"); n != 2 {
		t.Fatalf("expected 2 reservations, got %d", n)
	}
	if ok, _ := set.Reservations.ExistsByUserAndSlot(ctx, "a@x.io", "slt_2"); !ok {
		t.Fatalf("expected reservation to exist")
	}
	if ok, _ := set.Reservations.ExistsByUserAndSlot(ctx, "b@x.io", "slt_2"); ok {
		t.Fatalf("unexpected reservation")
	}
	mine, _ := set.Reservations.FindByUserEmail(ctx, "a@x.io")
	if len(mine) != 2 {
		t.Fatalf("expected 2 reservations for a, got %d", len(mine))
	}
	removed, err := set.Reservations.DeleteBySlotID(ctx, "slt_1")
	if err != nil || removed != 2 {
		t.Fatalf("delete by slot: %d %v", removed, err)
	}
	if removed, _ := set.Reservations.DeleteBySlotID(ctx, "slt_1"); removed != 0 {
		t.Fatalf("second delete must remove nothing")
	}
}

func TestSessionsAndClear(t *testing.T) {
	ctx := context.Background()
	set, medium := newTestSet(t)
	if _, ok, _ := set.Sessions.Current(ctx); ok {
		t.Fatalf("expected no session")
	}
	if err := set.Sessions.Save(ctx, domain.SessionUser{Email: "a@x.io", IsAdmin: true, LastLogin: fixedNow}); err != nil {
		t.Fatalf("save: %v", err)
	}
	cur, ok, err := set.Sessions.Current(ctx)
	if err != nil || !ok || cur.Email != "a@x.io" || !cur.IsAdmin || !cur.LastLogin.Equal(fixedNow) {
		t.Fatalf("current: %+v %v %v", cur, ok, err)
	}
	_, _ = set.Services.Create(ctx, domain.Service{ID: "svc_1", Name: "x"})
	_, _ = set.Users.Create(ctx, domain.UserAccount{ID: "usr_1", Email: "a@x.io"})
	if err := set.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if keys := medium.Keys(); len(keys) != 0 {
		t.Fatalf("expected every key removed, got %v", keys)
	}
}

func TestNewSetDefaultsClock(t *testing.T) {
	set := NewSet(memory.NewStore(), nil)
	if set.Slots.now == nil || set.Users.now == nil {
		t.Fatalf("expected default clock")
	}
	if d := time.Since(set.Slots.now()); d < 0 || d > time.Minute {
		t.Fatalf("default clock is off by %v", d)
	}
}
