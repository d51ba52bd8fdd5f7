package delivery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirDeliverCreatesDirAndWrites(t *testing.T) {
	base := t.TempDir()
	d := NewDir(filepath.Join(base, "downloads", "nested"))

	if err := d.Deliver([]byte("csv data"), "export.csv"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(base, "downloads", "nested", "export.csv"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "csv data" {
		t.Errorf("content = %q", got)
	}
}

func TestDirDeliverOverwrites(t *testing.T) {
	d := NewDir(t.TempDir())

	if err := d.Deliver([]byte("one"), "f.csv"); err != nil {
		t.Fatalf("first Deliver: %v", err)
	}
	if err := d.Deliver([]byte("two"), "f.csv"); err != nil {
		t.Fatalf("second Deliver: %v", err)
	}

	got, _ := os.ReadFile(filepath.Join(d.Path, "f.csv"))
	if string(got) != "two" {
		t.Errorf("content = %q, want overwrite", got)
	}
}

type recordingDeliverer struct {
	files []string
	err   error
}

func (r *recordingDeliverer) Deliver(data []byte, filename string) error {
	if r.err != nil {
		return r.err
	}
	r.files = append(r.files, filename)
	return nil
}

func TestMultiFansOut(t *testing.T) {
	a := &recordingDeliverer{}
	b := &recordingDeliverer{}

	m := Multi{a, b}
	if err := m.Deliver([]byte("x"), "f.zip"); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(a.files) != 1 || len(b.files) != 1 {
		t.Errorf("fan-out incomplete: a=%v b=%v", a.files, b.files)
	}
}

func TestMultiStopsAtFirstFailure(t *testing.T) {
	a := &recordingDeliverer{err: errors.New("disk full")}
	b := &recordingDeliverer{}

	m := Multi{a, b}
	if err := m.Deliver([]byte("x"), "f.zip"); err == nil {
		t.Fatal("expected error")
	}
	if len(b.files) != 0 {
		t.Errorf("second deliverer should not run after failure, got %v", b.files)
	}
}

func TestNewSFTPValidation(t *testing.T) {
	if _, err := NewSFTP(SFTPConfig{}); err == nil {
		t.Error("expected error for missing host/user")
	}

	s, err := NewSFTP(SFTPConfig{Host: "h", User: "u"})
	if err != nil {
		t.Fatalf("NewSFTP: %v", err)
	}
	if s.cfg.Port != 22 || s.cfg.RemoteDir != "/" {
		t.Errorf("defaults not applied: %+v", s.cfg)
	}
}
