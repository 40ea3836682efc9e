package store

import (
	"bytes"
	"testing"

	"github.com/iov-one/custody/errors"
)

// TestStoreContract runs the behaviour every CacheableKVStore must provide
// against stores created by given constructor. It is exported so that
// persistent implementations can be tested the same way as MemStore.
func TestStoreContract(t *testing.T, newStore func() CacheableKVStore) {
	t.Run("get set delete", func(t *testing.T) {
		db := newStore()
		mustSet(t, db, []byte("foo"), []byte("bar"))
		assertGet(t, db, []byte("foo"), []byte("bar"))
		if err := db.Delete([]byte("foo")); err != nil {
			t.Fatalf("cannot delete: %s", err)
		}
		assertGet(t, db, []byte("foo"), nil)
	})

	t.Run("cache wrap discard", func(t *testing.T) {
		db := newStore()
		mustSet(t, db, []byte("a"), []byte("1"))
		cache := db.CacheWrap()
		mustSet(t, cache, []byte("a"), []byte("2"))
		mustSet(t, cache, []byte("b"), []byte("3"))
		assertGet(t, cache, []byte("a"), []byte("2"))
		cache.Discard()
		assertGet(t, db, []byte("a"), []byte("1"))
		assertGet(t, db, []byte("b"), nil)
	})

	t.Run("cache wrap write", func(t *testing.T) {
		db := newStore()
		mustSet(t, db, []byte("a"), []byte("1"))
		mustSet(t, db, []byte("c"), []byte("5"))
		cache := db.CacheWrap()
		mustSet(t, cache, []byte("b"), []byte("3"))
		if err := cache.Delete([]byte("c")); err != nil {
			t.Fatalf("cannot delete: %s", err)
		}
		assertGet(t, db, []byte("b"), nil)
		if err := cache.Write(); err != nil {
			t.Fatalf("cannot write: %s", err)
		}
		assertGet(t, db, []byte("b"), []byte("3"))
		assertGet(t, db, []byte("c"), nil)
	})

	t.Run("iterators merge cached data", func(t *testing.T) {
		db := newStore()
		for _, k := range []string{"a", "b", "c", "d"} {
			mustSet(t, db, []byte(k), []byte(k))
		}
		cache := db.CacheWrap()
		mustSet(t, cache, []byte("b"), []byte("B"))
		mustSet(t, cache, []byte("bb"), []byte("BB"))
		if err := cache.Delete([]byte("c")); err != nil {
			t.Fatalf("cannot delete: %s", err)
		}

		want := []Model{Pair([]byte("a"), []byte("a")), Pair([]byte("b"), []byte("B")), Pair([]byte("bb"), []byte("BB")), Pair([]byte("d"), []byte("d"))}
		iter, err := cache.Iterator(nil, nil)
		if err != nil {
			t.Fatalf("cannot create iterator: %s", err)
		}
		assertIter(t, iter, want)

		reversed := []Model{want[2], want[1]}
		iter, err = cache.ReverseIterator([]byte("b"), []byte("d"))
		if err != nil {
			t.Fatalf("cannot create iterator: %s", err)
		}
		assertIter(t, iter, reversed)
	})
}

func mustSet(t testing.TB, db SetDeleter, key, value []byte) {
	t.Helper()
	if err := db.Set(key, value); err != nil {
		t.Fatalf("cannot set %q: %s", key, err)
	}
}

func assertGet(t testing.TB, db ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("cannot get %q: %s", key, err)
	}
	if !bytes.Equal(want, got) {
		t.Fatalf("want %q under %q, got %q", want, key, got)
	}
}

func assertIter(t testing.TB, iter Iterator, want []Model) {
	t.Helper()
	defer iter.Release()
	for i, w := range want {
		key, value, err := iter.Next()
		if err != nil {
			t.Fatalf("entry %d: %s", i, err)
		}
		if !bytes.Equal(w.Key, key) || !bytes.Equal(w.Value, value) {
			t.Fatalf("entry %d: want %q=%q, got %q=%q", i, w.Key, w.Value, key, value)
		}
	}
	if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("iterator not exhausted: %v", err)
	}
}
