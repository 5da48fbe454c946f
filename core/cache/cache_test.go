package cache

import (
	"testing"
	"time"
)

func TestNewCache(t *testing.T) {
	c := NewCache()
	if c == nil {
		t.Fatal("NewCache returned nil")
	}
}

func TestGetInstance(t *testing.T) {
	inst := GetInstance()
	if inst == nil {
		t.Fatal("GetInstance returned nil")
	}
	if GetInstance() != inst {
		t.Error("GetInstance should return same instance")
	}
}

func TestSet_Get(t *testing.T) {
	c := NewCache()
	c.Set("test-set-get", "val", 0, nil)
	got, ok := c.Get("test-set-get")
	if !ok {
		t.Fatal("Get: want true")
	}
	if got != "val" {
		t.Errorf("Get = %v, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nonexistent-key-xyz"); ok {
		t.Error("Get missing key: want false")
	}
}

func TestGet_Expired(t *testing.T) {
	c := NewCache()
	c.Set("exp", "v", 1, nil)
	// Force expiry by rewriting with an already-past deadline.
	c.m.Store("exp", cacheItem{Value: "v", ExpiresAt: time.Now().Add(-time.Second).UnixNano()})
	if _, ok := c.Get("exp"); ok {
		t.Error("Get expired key: want false")
	}
}

func TestDelete(t *testing.T) {
	c := NewCache()
	c.Set("test-delete", "x", 0, nil)
	c.Delete("test-delete")
	if _, ok := c.Get("test-delete"); ok {
		t.Error("Delete: key should be gone")
	}
}

func TestGetOrDefault(t *testing.T) {
	c := NewCache()
	def := "default"
	if got := c.GetOrDefault("test-default", def); got != def {
		t.Errorf("GetOrDefault missing = %v, want %v", got, def)
	}
	c.Set("test-default", "stored", 0, nil)
	if got := c.GetOrDefault("test-default", def); got != "stored" {
		t.Errorf("GetOrDefault found = %v, want stored", got)
	}
}

func TestDeleteMany(t *testing.T) {
	c := NewCache()
	c.Set("dm1", 1, 0, nil)
	c.Set("dm2", 2, 0, nil)
	c.DeleteMany("dm1", "dm2")
	if _, ok := c.Get("dm1"); ok {
		t.Error("DeleteMany: dm1 should be gone")
	}
	if _, ok := c.Get("dm2"); ok {
		t.Error("DeleteMany: dm2 should be gone")
	}
}

func TestSetN_GetN_DeleteN(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"a", "b"}, "composite-val", 0, nil)
	got, ok := c.GetN("a", "b")
	if !ok || got != "composite-val" {
		t.Errorf("GetN = %v, %v; want composite-val, true", got, ok)
	}
	c.DeleteN("a", "b")
	if _, ok = c.GetN("a", "b"); ok {
		t.Error("DeleteN: key should be gone")
	}
}

func TestGetMany(t *testing.T) {
	c := NewCache()
	c.Set("gm1", "v1", 0, nil)
	c.Set("gm2", "v2", 0, nil)
	results := c.GetMany("gm1", "gm2", "gm-missing")
	if len(results) != 3 {
		t.Fatalf("GetMany len = %d, want 3", len(results))
	}
	if results[0] != "v1" || results[1] != "v2" || results[2] != nil {
		t.Errorf("GetMany = %v", results)
	}
}

func TestFlushTag(t *testing.T) {
	c := NewCache()
	c.Set("t1", "v1", 0, []string{"grp"})
	c.Set("t2", "v2", 0, []string{"grp"})
	c.Set("t3", "v3", 0, []string{"other"})
	c.FlushTag("grp")
	if _, ok := c.Get("t1"); ok {
		t.Error("FlushTag: t1 should be gone")
	}
	if _, ok := c.Get("t2"); ok {
		t.Error("FlushTag: t2 should be gone")
	}
	if _, ok := c.Get("t3"); !ok {
		t.Error("FlushTag: t3 should survive")
	}
}
