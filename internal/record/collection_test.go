package record

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"bookingcore/internal/infra/persistence/memory"
	"bookingcore/pkg/domain"
)

type item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (i item) RecordID() string { return i.ID }

type failingMedium struct {
	*memory.Store
	getErr error
	setErr error
	rmErr  error
}

func (f *failingMedium) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *failingMedium) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingMedium) Remove(ctx context.Context, key string) error {
	if f.rmErr != nil {
		return f.rmErr
	}
	return f.Store.Remove(ctx, key)
}

var _ domain.Medium = (*failingMedium)(nil)

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	medium := memory.NewStore()
	c := NewCollection[item](medium, "items")
	if c.key != "items" {
		t.Fatalf("unexpected key %q", c.key)
	}

	list, err := c.List(ctx)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", list, err)
	}
	for _, it := range []item{{ID: "a", Name: "alpha"}, {ID: "b", Name: "beta"}, {ID: "c", Name: "gamma"}} {
		if _, err := c.Create(ctx, it); err != nil {
			t.Fatalf("create %s: %v", it.ID, err)
		}
	}
	list, _ = c.List(ctx)
	if len(list) != 3 || list[0].ID != "a" || list[2].ID != "c" {
		t.Fatalf("expected insertion order, got %+v", list)
	}

	got, ok, err := c.FindByID(ctx, "b")
	if err != nil || !ok || got.Name != "beta" {
		t.Fatalf("find b: %+v %v %v", got, ok, err)
	}
	if _, ok, _ := c.FindByID(ctx, "zzz"); ok {
		t.Fatalf("expected miss")
	}

	updated, ok, err := c.Update(ctx, "b", func(it *item) { it.Count = 7 })
	if err != nil || !ok || updated.Count != 7 || updated.Name != "beta" {
		t.Fatalf("update: %+v %v %v", updated, ok, err)
	}
	if _, ok, err := c.Update(ctx, "zzz", func(*item) {}); ok || err != nil {
		t.Fatalf("update of unknown id must report false, got %v %v", ok, err)
	}

	filtered, _ := c.Filter(ctx, func(it item) bool { return strings.Contains(it.Name, "a") })
	if len(filtered) != 3 {
		t.Fatalf("expected three matches, got %d", len(filtered))
	}

	removed, err := c.Delete(ctx, "a")
	if err != nil || !removed {
		t.Fatalf("delete a: %v %v", removed, err)
	}
	if removed, _ := c.Delete(ctx, "a"); removed {
		t.Fatalf("second delete must report false")
	}
	n, err := c.DeleteWhere(ctx, func(it item) bool { return it.Count == 7 })
	if err != nil || n != 1 {
		t.Fatalf("delete where: %d %v", n, err)
	}
	raw, _, _ := medium.Get(ctx, "items")
	if string(raw) != `[{"id":"c","name":"gamma","count":0}]` {
		t.Fatalf("unexpected persisted payload %s", raw)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := medium.Get(ctx, "items"); ok {
		t.Fatalf("clear must remove the key")
	}
}

func TestCollectionEmptyArrayIsPersisted(t *testing.T) {
	ctx := context.Background()
	medium := memory.NewStore()
	c := NewCollection[item](medium, "items")
	_, _ = c.Create(ctx, item{ID: "only"})
	if _, err := c.Delete(ctx, "only"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	raw, ok, _ := medium.Get(ctx, "items")
	if !ok || string(raw) != "[]" {
		t.Fatalf("expected [] after deleting the last record, got %q", raw)
	}
}

func TestCollectionUpdateRejectsIDChange(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](memory.NewStore(), "items")
	_, _ = c.Create(ctx, item{ID: "a"})
	_, ok, err := c.Update(ctx, "a", func(it *item) { it.ID = "b" })
	if !errors.Is(err, ErrIDChanged) || ok {
		t.Fatalf("expected ErrIDChanged, got %v", err)
	}
	if _, ok, _ := c.FindByID(ctx, "a"); !ok {
		t.Fatalf("original record must be untouched")
	}
}

func TestCollectionSurfacesMediumErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	medium := &failingMedium{Store: memory.NewStore()}
	c := NewCollection[item](medium, "items")

	medium.setErr = boom
	if _, err := c.Create(ctx, item{ID: "a"}); !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	medium.setErr = nil

	medium.getErr = boom
	if _, err := c.List(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if _, _, err := c.FindByID(ctx, "a"); !errors.Is(err, boom) {
		t.Fatalf("expected read error from find, got %v", err)
	}
	if _, err := c.DeleteWhere(ctx, func(item) bool { return true }); !errors.Is(err, boom) {
		t.Fatalf("expected read error from delete, got %v", err)
	}
	medium.getErr = nil

	medium.rmErr = boom
	if err := c.Clear(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected remove error, got %v", err)
	}
	if _, isDomain := domain.KindOf(c.Clear(ctx)); isDomain {
		t.Fatalf("infrastructure errors must not be domain errors")
	}
}

func TestCollectionDecodeError(t *testing.T) {
	ctx := context.Background()
	medium := memory.NewStore()
	_ = medium.Set(ctx, "items", []byte("{not json"))
	c := NewCollection[item](medium, "items")
	if _, err := c.List(ctx); err == nil || !strings.Contains(err.Error(), "decode items") {
		t.Fatalf("expected decode error, got %v", err)
	}
	_ = medium.Set(ctx, "items", []byte("null"))
	if list, err := c.List(ctx); err != nil || len(list) != 0 {
		t.Fatalf("null payload must read as empty, got %v %v", list, err)
	}
}

func TestCollectionConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[item](memory.NewStore(), "items")
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = c.Create(ctx, item{ID: string(rune('A' + i))})
		}(i)
	}
	wg.Wait()
	list, _ := c.List(ctx)
	if len(list) != 32 {
		t.Fatalf("expected 32 records, got %d", len(list))
	}
}
