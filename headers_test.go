package kaskade

import "testing"

func TestHeadersCaseInsensitiveGetSet(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Foo", "a")

	if v, ok := h.Get("x-foo"); !ok || v != "a" {
		t.Errorf("Get(x-foo) = %q, %v; want a, true", v, ok)
	}
	if v, ok := h.Get("X-FOO"); !ok || v != "a" {
		t.Errorf("Get(X-FOO) = %q, %v; want a, true", v, ok)
	}

	h.Set("x-FOO", "b")
	if v, _ := h.Get("X-Foo"); v != "b" {
		t.Errorf("overwrite with different casing: got %q, want b", v)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (same logical header)", h.Len())
	}
}

func TestHeadersGetAbsent(t *testing.T) {
	h := NewHeaders()
	if v, ok := h.Get("X-Missing"); ok || v != "" {
		t.Errorf("Get on absent header = %q, %v; want empty, false", v, ok)
	}
}

func TestHeadersDel(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Foo", "a")
	h.Del("x-fOO")
	if _, ok := h.Get("X-Foo"); ok {
		t.Error("Del with different casing should remove the header")
	}
	// Removing an absent name is a no-op.
	h.Del("X-Foo")
}

func TestHeadersSetAll(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Keep", "orig")
	h.SetAll(map[string]string{
		"X-One": "1",
		"x-two": "2",
	})
	if v, _ := h.Get("X-ONE"); v != "1" {
		t.Errorf("Get(X-ONE) = %q, want 1", v)
	}
	if v, _ := h.Get("X-Two"); v != "2" {
		t.Errorf("Get(X-Two) = %q, want 2", v)
	}
	if v, _ := h.Get("X-Keep"); v != "orig" {
		t.Errorf("SetAll must not disturb unrelated headers, got %q", v)
	}
}

func TestHeadersClone(t *testing.T) {
	h := NewHeaders()
	h.Set("X-Foo", "a")
	c := h.Clone()
	c.Set("X-Foo", "b")
	if v, _ := h.Get("X-Foo"); v != "a" {
		t.Errorf("mutating the clone must not affect the original, got %q", v)
	}
}

func TestDefaultHeaders(t *testing.T) {
	h := defaultHeaders("3")
	if v, _ := h.Get("accept"); v != "application/json" {
		t.Errorf("Accept = %q, want application/json", v)
	}
	if v, _ := h.Get("content-type"); v != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", v)
	}
	if v, _ := h.Get("X-Kaskade-Api-Version"); v != "3" {
		t.Errorf("api version header = %q, want 3", v)
	}
}
