package changes

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func fp(path, sum string) Fingerprint {
	return Fingerprint{Path: path, Checksum: sum}
}

func TestHasChanged(t *testing.T) {
	prev := []string{"/p/a.R", "/p/b.R"}
	prevFP := map[string]Fingerprint{"/p/a.R": fp("/p/a.R", "1"), "/p/b.R": fp("/p/b.R", "2")}

	tests := []struct {
		name  string
		cur   []string
		curFP map[string]Fingerprint
		want  bool
	}{
		{"unchanged reordered", []string{"/p/b.R", "/p/a.R"}, prevFP, false},
		{"count differs", []string{"/p/a.R"}, prevFP, true},
		{"renamed", []string{"/p/a.R", "/p/c.R"}, prevFP, true},
		{"touched", prev, map[string]Fingerprint{"/p/a.R": fp("/p/a.R", "1"), "/p/b.R": fp("/p/b.R", "9")}, true},
		{"fingerprint lost", prev, map[string]Fingerprint{"/p/a.R": fp("/p/a.R", "1")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanged(prev, tt.cur, prevFP, tt.curFP); got != tt.want {
				t.Fatalf("HasChanged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	prev := []string{"/p/a.R", "/p/b.R", "/p/gone.R"}
	cur := []string{"/p/new.py", "/p/b.R", "/p/a.R"}
	prevFP := map[string]Fingerprint{"/p/a.R": fp("/p/a.R", "1"), "/p/b.R": fp("/p/b.R", "2"), "/p/gone.R": fp("/p/gone.R", "3")}
	curFP := map[string]Fingerprint{"/p/a.R": fp("/p/a.R", "1"), "/p/b.R": fp("/p/b.R", "5"), "/p/new.py": fp("/p/new.py", "7")}

	d := Compare(prev, cur, prevFP, curFP)
	want := Diff{Added: []string{"/p/new.py"}, Modified: []string{"/p/b.R"}, Removed: []string{"/p/gone.R"}}
	if !reflect.DeepEqual(d, want) {
		t.Fatalf("unexpected diff %+v", d)
	}
	if d.Empty() {
		t.Fatal("expected non-empty diff")
	}
	if !Compare(prev, prev, prevFP, prevFP).Empty() {
		t.Fatal("expected empty diff for identical snapshots")
	}
}

func TestMtimeFingerprinter_TracksTouchNotContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.R")
	if err := os.WriteFile(path, []byte("x <- 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Unix(1700000000, 0)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	var f MtimeFingerprinter
	first, err := f.Fingerprint(path)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if first.LastModified != "1700000000" {
		t.Fatalf("unexpected last modified %q", first.LastModified)
	}

	// Same mtime, different content: not detected.
	if err := os.WriteFile(path, []byte("x <- 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	second, _ := f.Fingerprint(path)
	if second.Checksum != first.Checksum {
		t.Fatal("expected mtime fingerprint to ignore content")
	}

	// Touch without content change: detected.
	later := stamp.Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	third, _ := f.Fingerprint(path)
	if third.Checksum == first.Checksum {
		t.Fatal("expected touch to change the fingerprint")
	}
}

func TestContentFingerprinter(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.R")
	b := filepath.Join(dir, "b.R")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte("same\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fa, err := ContentFingerprinter{}.Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, _ := ContentFingerprinter{}.Fingerprint(b)
	if fa.Checksum != fb.Checksum {
		t.Fatal("expected identical content to hash identically")
	}
	if _, ok := NewFingerprinter("content").(ContentFingerprinter); !ok {
		t.Fatal("expected content mode to select ContentFingerprinter")
	}
	if _, ok := NewFingerprinter("").(MtimeFingerprinter); !ok {
		t.Fatal("expected default mode to select MtimeFingerprinter")
	}

	all := ComputeAll(ContentFingerprinter{}, []string{a, filepath.Join(dir, "missing.R")})
	if len(all) != 1 {
		t.Fatalf("expected missing file to be skipped, got %d entries", len(all))
	}
}
