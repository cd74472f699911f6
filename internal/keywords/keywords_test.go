package keywords

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// fakeClient plays back canned responses and counts calls.
type fakeClient struct {
	calls     int
	responses []string
	err       error
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.calls > len(f.responses) {
		return f.responses[len(f.responses)-1], nil
	}
	return f.responses[f.calls-1], nil
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "keywords.json"))
}

func fastOptions() Options {
	return Options{MaxAttempts: 3, RetryBase: time.Millisecond}
}

func TestNormalize(t *testing.T) {
	raw := "Tumor, Chemotherapy,  Immunotherapy\nMetastasis"
	got := Normalize(raw, "Oncology")
	want := []string{"tumor", "chemotherapy", "immunotherapy", "metastasis", "oncology"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache := testCache(t)

	if _, ok, err := cache.Get("Oncology"); err != nil || ok {
		t.Fatalf("expected empty cache, got ok=%v err=%v", ok, err)
	}

	want := []string{"tumor", "oncology"}
	if err := cache.Put("Oncology", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.Get("Oncology")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	cache := testCache(t)
	cache.Put("Oncology", []string{"tumor"})
	cache.Put("CNS", []string{"neuron"})

	if err := cache.Delete("Oncology"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := cache.Get("Oncology"); ok {
		t.Error("Oncology should be evicted")
	}
	if _, ok, _ := cache.Get("CNS"); !ok {
		t.Error("CNS should survive a single-area delete")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := cache.Get("CNS"); ok {
		t.Error("CNS should be gone after clear")
	}
}

func TestLookupGeneratesAndCaches(t *testing.T) {
	client := &fakeClient{responses: []string{"tumor, chemotherapy"}}
	gen := NewGenerator(client, testCache(t), fastOptions())

	got, err := gen.Lookup(context.Background(), "Oncology")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := []string{"tumor", "chemotherapy", "oncology"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Second lookup must be served from cache, not the provider
	again, err := gen.Lookup(context.Background(), "Oncology")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if !reflect.DeepEqual(again, want) {
		t.Errorf("cached lookup got %v, want %v", again, want)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", client.calls)
	}
}

func TestLookupRetriesEmptyResponse(t *testing.T) {
	client := &fakeClient{responses: []string{"", "tumor"}}
	gen := NewGenerator(client, testCache(t), fastOptions())

	got, err := gen.Lookup(context.Background(), "Oncology")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("expected retry after empty response, got %d calls", client.calls)
	}
	want := []string{"tumor", "oncology"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLookupNeverCachesEmpty(t *testing.T) {
	client := &fakeClient{responses: []string{""}}
	cache := testCache(t)
	gen := NewGenerator(client, cache, fastOptions())

	if _, err := gen.Lookup(context.Background(), "Oncology"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}
	if _, ok, _ := cache.Get("Oncology"); ok {
		t.Error("an empty result must not poison the cache")
	}
}

func TestLookupProviderError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	gen := NewGenerator(client, testCache(t), fastOptions())

	if _, err := gen.Lookup(context.Background(), "Oncology"); err == nil {
		t.Fatal("expected error from provider failure")
	}
	if client.calls != 1 {
		t.Errorf("provider errors are not retried, got %d calls", client.calls)
	}
}

func TestLookupWithoutClientUsesCacheOnly(t *testing.T) {
	cache := testCache(t)
	cache.Put("Oncology", []string{"tumor"})
	gen := NewGenerator(nil, cache, fastOptions())

	got, err := gen.Lookup(context.Background(), "Oncology")
	if err != nil {
		t.Fatalf("cached lookup without client: %v", err)
	}
	if len(got) != 1 || got[0] != "tumor" {
		t.Errorf("got %v", got)
	}

	if _, err := gen.Lookup(context.Background(), "CNS"); err == nil {
		t.Error("uncached area without a client should fail")
	}
}
