package bimap

import "testing"

func TestInsertLookup(t *testing.T) {
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)

	if v, ok := m.ValueOf("a"); !ok || v != 1 {
		t.Errorf("ValueOf(a) = %d, %v; want 1, true", v, ok)
	}
	if k, ok := m.KeyOf(2); !ok || k != "b" {
		t.Errorf("KeyOf(2) = %s, %v; want b, true", k, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestInsertStaysInjective(t *testing.T) {
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("a", 2) // rebind key
	if v, _ := m.ValueOf("a"); v != 2 {
		t.Errorf("ValueOf(a) = %d, want 2", v)
	}
	if _, ok := m.KeyOf(1); ok {
		t.Error("value 1 should have been unmapped")
	}

	m.Insert("b", 2) // steal value from a
	if _, ok := m.ValueOf("a"); ok {
		t.Error("key a should have been unmapped")
	}
	if k, _ := m.KeyOf(2); k != "b" {
		t.Errorf("KeyOf(2) = %s, want b", k)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestRemoveEitherSideRemovesPair(t *testing.T) {
	m := New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)

	if v, ok := m.RemoveByKey("a"); !ok || v != 1 {
		t.Errorf("RemoveByKey(a) = %d, %v", v, ok)
	}
	if _, ok := m.KeyOf(1); ok {
		t.Error("backward entry for 1 survived RemoveByKey")
	}

	if k, ok := m.RemoveByValue(2); !ok || k != "b" {
		t.Errorf("RemoveByValue(2) = %s, %v", k, ok)
	}
	if _, ok := m.ValueOf("b"); ok {
		t.Error("forward entry for b survived RemoveByValue")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestRemoveMissing(t *testing.T) {
	m := New[string, int]()
	if _, ok := m.RemoveByKey("nope"); ok {
		t.Error("RemoveByKey on empty map reported ok")
	}
	if _, ok := m.RemoveByValue(9); ok {
		t.Error("RemoveByValue on empty map reported ok")
	}
}

func TestClone(t *testing.T) {
	m := New[string, int]()
	m.Insert("a", 1)
	c := m.Clone()
	c.Insert("b", 2)
	if m.Len() != 1 {
		t.Errorf("original mutated through clone: Len() = %d", m.Len())
	}
	if v, ok := c.ValueOf("a"); !ok || v != 1 {
		t.Errorf("clone lost entry: %d, %v", v, ok)
	}
}
