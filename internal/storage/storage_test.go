package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
)

func formFile(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	mr := multipart.NewReader(&buf, mw.Boundary())
	form, err := mr.ReadForm(10 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field][0]
}

func TestSaveStoresFileAndReturnsRef(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	content := []byte("fake jpeg bytes")
	ref, err := store.Save(formFile(t, "photos", "crate.jpg", content), "inspections/abc")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if ref.OriginalName != "crate.jpg" {
		t.Errorf("original name = %q", ref.OriginalName)
	}
	if ref.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", ref.Size, len(content))
	}
	if filepath.Ext(ref.Path) != ".jpg" {
		t.Errorf("stored path %q keeps the extension", ref.Path)
	}

	data, err := os.ReadFile(filepath.Join(store.BaseDir(), filepath.FromSlash(ref.Path)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("stored content differs from upload")
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Save(formFile(t, "photos", "malware.exe", []byte("nope")), "inspections/abc"); err == nil {
		t.Error("exe upload must be rejected")
	}
}

func TestSaveRejectsOversizeFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// The size gate runs before the file is opened, so a bare header is enough.
	oversize := &multipart.FileHeader{Filename: "pallet.jpg", Size: MaxUploadSize + 1}
	if _, err := store.Save(oversize, "inspections/abc"); err == nil {
		t.Error("upload past the size limit must be rejected")
	}
}

func TestSaveAllCleansUpOnFailure(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	files := []*multipart.FileHeader{
		formFile(t, "photos", "ok.png", []byte("png")),
		formFile(t, "photos", "bad.exe", []byte("nope")),
	}
	if _, err := store.SaveAll(files, "queries/q1"); err == nil {
		t.Fatal("SaveAll must fail when one file is rejected")
	}

	entries, _ := os.ReadDir(filepath.Join(store.BaseDir(), "queries", "q1"))
	if len(entries) != 0 {
		t.Errorf("%d orphan files left behind after failed SaveAll", len(entries))
	}
}
