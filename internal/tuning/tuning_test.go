package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := "sales_cut_rate: 0.25\nmax_listings_per_seller: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.SalesCutRate != 0.25 {
		t.Fatalf("SalesCutRate = %v, want 0.25", tn.SalesCutRate)
	}
	if tn.MaxListingsPerSeller != 10 {
		t.Fatalf("MaxListingsPerSeller = %d, want 10", tn.MaxListingsPerSeller)
	}
	// Unset keys keep their defaults.
	if tn.ListingWeekHours != 168 {
		t.Fatalf("ListingWeekHours = %v, want 168", tn.ListingWeekHours)
	}
	if tn.ClientQueueMax != 64 {
		t.Fatalf("ClientQueueMax = %d, want 64", tn.ClientQueueMax)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tn, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	if tn != Defaults() {
		t.Fatalf("missing file did not fall back to defaults: %+v", tn)
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("sales_cut_rate: [not a number"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml loaded without error")
	}
}
