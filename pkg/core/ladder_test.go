package core

import (
	"math/rand"
	"testing"
)

func TestLadderOrdering(t *testing.T) {
	tree := newLadder()

	prices := []Price{105, 99, 101, 110, 95, 100, 102}
	for _, p := range prices {
		tree.UpsertLevel(p)
	}

	if tree.Size() != len(prices) {
		t.Fatalf("size = %d, want %d", tree.Size(), len(prices))
	}
	if tree.MinLevel().price != 95 {
		t.Errorf("min = %d, want 95", tree.MinLevel().price)
	}
	if tree.MaxLevel().price != 110 {
		t.Errorf("max = %d, want 110", tree.MaxLevel().price)
	}

	var ascending []Price
	tree.Ascend(func(lvl *priceLevel) bool {
		ascending = append(ascending, lvl.price)
		return true
	})
	for i := 1; i < len(ascending); i++ {
		if ascending[i-1] >= ascending[i] {
			t.Fatalf("ascend not strictly increasing: %v", ascending)
		}
	}

	var descending []Price
	tree.Descend(func(lvl *priceLevel) bool {
		descending = append(descending, lvl.price)
		return true
	})
	for i := 1; i < len(descending); i++ {
		if descending[i-1] <= descending[i] {
			t.Fatalf("descend not strictly decreasing: %v", descending)
		}
	}
}

func TestLadderUpsertIsIdempotent(t *testing.T) {
	tree := newLadder()

	first := tree.UpsertLevel(100)
	second := tree.UpsertLevel(100)
	if first != second {
		t.Error("upsert of an existing price returned a different bucket")
	}
	if tree.Size() != 1 {
		t.Errorf("size = %d, want 1", tree.Size())
	}
}

func TestLadderDelete(t *testing.T) {
	tree := newLadder()

	for _, p := range []Price{1, 2, 3, 4, 5} {
		tree.UpsertLevel(p)
	}

	if !tree.DeleteLevel(3) {
		t.Fatal("delete of existing level returned false")
	}
	if tree.DeleteLevel(3) {
		t.Fatal("delete of absent level returned true")
	}
	if tree.FindLevel(3) != nil {
		t.Error("deleted level still findable")
	}
	if tree.Size() != 4 {
		t.Errorf("size = %d, want 4", tree.Size())
	}

	for _, p := range []Price{1, 2, 4, 5} {
		if !tree.DeleteLevel(p) {
			t.Fatalf("delete(%d) failed", p)
		}
	}
	if !tree.Empty() {
		t.Error("tree not empty after deleting everything")
	}
	if tree.MinLevel() != nil || tree.MaxLevel() != nil {
		t.Error("extremes of an empty tree should be nil")
	}
}

func TestLadderRandomized(t *testing.T) {
	tree := newLadder()
	rng := rand.New(rand.NewSource(42))
	present := make(map[Price]bool)

	for i := 0; i < 5000; i++ {
		p := Price(rng.Intn(500))
		if rng.Intn(3) == 0 {
			deleted := tree.DeleteLevel(p)
			if deleted != present[p] {
				t.Fatalf("delete(%d) = %v, want %v", p, deleted, present[p])
			}
			delete(present, p)
		} else {
			tree.UpsertLevel(p)
			present[p] = true
		}
	}

	if tree.Size() != len(present) {
		t.Fatalf("size = %d, want %d", tree.Size(), len(present))
	}

	var walked []Price
	tree.Ascend(func(lvl *priceLevel) bool {
		walked = append(walked, lvl.price)
		return true
	})
	if len(walked) != len(present) {
		t.Fatalf("walked %d levels, want %d", len(walked), len(present))
	}
	for i := 1; i < len(walked); i++ {
		if walked[i-1] >= walked[i] {
			t.Fatalf("walk out of order at %d: %v", i, walked[i-1])
		}
	}
	for _, p := range walked {
		if !present[p] {
			t.Fatalf("walked price %d not expected", p)
		}
	}
}

func TestPriceLevelFIFO(t *testing.T) {
	lvl := &priceLevel{price: 100}

	a, _ := NewOrder(GoodTilCancel, 1, Buy, 100, 1)
	b, _ := NewOrder(GoodTilCancel, 2, Buy, 100, 1)
	c, _ := NewOrder(GoodTilCancel, 3, Buy, 100, 1)

	na := lvl.PushBack(a)
	nb := lvl.PushBack(b)
	nc := lvl.PushBack(c)

	if lvl.Front() != na {
		t.Fatal("front is not the oldest order")
	}

	// Removing the middle node must not disturb the others' handles.
	lvl.Remove(nb)
	if lvl.size != 2 || lvl.Front() != na || na.next != nc {
		t.Error("middle removal broke the list")
	}

	lvl.Remove(na)
	if lvl.Front() != nc {
		t.Error("front removal broke the list")
	}

	lvl.Remove(nc)
	if !lvl.Empty() || lvl.head != nil || lvl.tail != nil {
		t.Error("level not empty after removing everything")
	}
}
