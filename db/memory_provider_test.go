package db

import (
	"errors"
	"testing"
)

var errTest = errors.New("boom")

func TestMemoryProviderBasicOps(t *testing.T) {
	p := NewMemoryProvider()

	if err := p.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	v, err := p.Get([]byte("a"))
	if err != nil || string(v) != "1" {
		t.Fatalf("Get returned (%q, %v), want (1, nil)", v, err)
	}

	v, err = p.Get([]byte("missing"))
	if err != nil || v != nil {
		t.Fatalf("Get of missing key returned (%q, %v), want (nil, nil)", v, err)
	}

	ok, err := p.Has([]byte("a"))
	if err != nil || !ok {
		t.Fatalf("Has returned (%v, %v), want (true, nil)", ok, err)
	}

	if err := p.Delete([]byte("a")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	ok, _ = p.Has([]byte("a"))
	if ok {
		t.Error("key still present after delete")
	}
}

func TestMemoryBatchCommitAndDiscard(t *testing.T) {
	p := NewMemoryProvider()

	batch := p.Batch()
	batch.Put([]byte("x"), []byte("1"))
	batch.Put([]byte("y"), []byte("2"))

	// Nothing visible before Write
	if ok, _ := p.Has([]byte("x")); ok {
		t.Fatal("batched write visible before commit")
	}

	if err := batch.Write(); err != nil {
		t.Fatalf("batch write failed: %v", err)
	}
	if ok, _ := p.Has([]byte("x")); !ok {
		t.Fatal("batched write not visible after commit")
	}
	if ok, _ := p.Has([]byte("y")); !ok {
		t.Fatal("batched write not visible after commit")
	}
	batch.Close()

	// Reset discards staged operations
	batch = p.Batch()
	batch.Put([]byte("z"), []byte("3"))
	batch.Reset()
	if err := batch.Write(); err != nil {
		t.Fatalf("empty batch write failed: %v", err)
	}
	if ok, _ := p.Has([]byte("z")); ok {
		t.Error("reset batch still applied operations")
	}
	batch.Close()
}

func TestWithBatchRollsBackOnError(t *testing.T) {
	p := NewMemoryProvider()
	tm := NewDBTxManager(p)

	err := tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("k"), []byte("v"))
		return errTest
	})
	if err == nil {
		t.Fatal("expected error from WithBatch")
	}
	if ok, _ := p.Has([]byte("k")); ok {
		t.Error("failed batch leaked state")
	}

	err = tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("k"), []byte("v"))
		return nil
	})
	if err != nil {
		t.Fatalf("WithBatch failed: %v", err)
	}
	if ok, _ := p.Has([]byte("k")); !ok {
		t.Error("committed batch not applied")
	}
}

func TestIteratePrefix(t *testing.T) {
	p := NewMemoryProvider().(*MemoryProvider)
	p.Put([]byte("event:1"), []byte("a"))
	p.Put([]byte("event:2"), []byte("b"))
	p.Put([]byte("account:1"), []byte("c"))

	var keys []string
	err := p.IteratePrefix([]byte("event:"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	})
	if err != nil {
		t.Fatalf("IteratePrefix failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "event:1" || keys[1] != "event:2" {
		t.Errorf("unexpected keys: %v", keys)
	}
}
