// ABOUTME: Tests for the notely CLI commands.
// ABOUTME: Runs commands in-process against a temporary database.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
)

// useTempStore points the config at a fresh database for one test.
func useTempStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("NOTELY_STORE_PATH", filepath.Join(dir, "notely.db"))
	t.Setenv("NOTELY_STORE_DRIVER", "sqlite")
	t.Setenv("NOTELY_AUTH_BCRYPT_COST", "4")
	t.Setenv("NOTELY_LOG_LEVEL", "error")
	configPath = ""
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestUserAddAndImportExport(t *testing.T) {
	dir := useTempStore(t)

	if err := run(t, "user", "add", "--email", "ada@example.com", "--first", "Ada", "--last", "", "--gender", "F", "--password", "correct-horse"); err != nil {
		t.Fatalf("user add failed: %v", err)
	}

	md := "---\ntitle: Groceries\nfavourite: true\n---\n\nBuy milk\n"
	mdPath := filepath.Join(dir, "groceries.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "import", mdPath, "--email", "ada@example.com"); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	out := filepath.Join(dir, "export.json")
	if err := run(t, "export", "--email", "ada@example.com", "--format", "json", "--output", out, "--note", ""); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.Owner != "ada@example.com" {
		t.Errorf("expected owner ada@example.com, got %q", export.Owner)
	}
	if len(export.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(export.Notes))
	}
	got := export.Notes[0]
	if got.Title != "Groceries" || got.Description != "Buy milk" || !got.IsFavourite {
		t.Errorf("unexpected exported note: %+v", got)
	}
}

func TestUserAddRejectsInvalidAccount(t *testing.T) {
	useTempStore(t)

	if err := run(t, "user", "add", "--email", "not-an-email", "--first", "", "--last", "", "--password", "short"); err == nil {
		t.Fatal("expected invalid account to be rejected")
	}
	if err := run(t, "user", "add", "--email", "ok@example.com", "--first", "", "--last", "", "--gender", "X", "--password", "long-enough"); err == nil {
		t.Fatal("expected unknown gender to be rejected")
	}
}

func TestOwnerRequiresKnownEmail(t *testing.T) {
	useTempStore(t)

	if err := run(t, "list", "--email", "nobody@example.com", "--favourites=false", "--search", ""); err == nil {
		t.Fatal("expected unknown account to fail")
	}
	if err := run(t, "list", "--email", "", "--favourites=false", "--search", ""); err == nil {
		t.Fatal("expected missing --email to fail")
	}
}

func TestExportJSON(t *testing.T) {
	note := models.NewNote(uuid.New(), "Plan", "Step one", true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := exportJSON(&buf, "ada@example.com", []*models.Note{note}, now); err != nil {
		t.Fatalf("exportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !export.ExportedAt.Equal(now) {
		t.Errorf("expected exported_at %v, got %v", now, export.ExportedAt)
	}
	if export.Version != exportVersion {
		t.Errorf("expected version %s, got %s", exportVersion, export.Version)
	}
	if len(export.Notes) != 1 || export.Notes[0].ID != note.ID.String() {
		t.Errorf("unexpected notes: %+v", export.Notes)
	}
}

func TestExportJSONEmptyListIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := exportJSON(&buf, "ada@example.com", nil, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"notes": []`) {
		t.Errorf("expected empty notes array, got %s", buf.String())
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	note := models.NewNote(uuid.New(), "Reading list", "- Dune\n- Hyperion", true)

	data, err := markdownNote(note)
	if err != nil {
		t.Fatalf("markdownNote failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") {
		t.Errorf("expected frontmatter, got %q", data)
	}
	if !strings.Contains(string(data), "title: Reading list") {
		t.Errorf("expected title in frontmatter, got %q", data)
	}

	in, err := parseMarkdownNote(string(data))
	if err != nil {
		t.Fatalf("parseMarkdownNote failed: %v", err)
	}
	if in.Title != note.Title || in.Description != note.Description || !in.IsFavourite {
		t.Errorf("round trip mismatch: %+v", in)
	}
}

func TestParseMarkdownWithoutFrontmatter(t *testing.T) {
	in, err := parseMarkdownNote("  just text\n")
	if err != nil {
		t.Fatal(err)
	}
	if in.Title != "" || in.Description != "just text" {
		t.Errorf("unexpected input: %+v", in)
	}

	if _, err := parseMarkdownNote("---\ntitle: open"); err == nil {
		t.Error("expected unterminated frontmatter to fail")
	}
}

func TestExportMarkdownWritesOneFilePerNote(t *testing.T) {
	dir := t.TempDir()
	owner := uuid.New()
	list := []*models.Note{
		models.NewNote(owner, "Same", "a", false),
		models.NewNote(owner, "Same", "b", false),
	}

	if err := exportMarkdown(list, dir); err != nil {
		t.Fatalf("exportMarkdown failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files for notes sharing a title, got %d", len(entries))
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("a/b:c?"); got != "a-b-c-" {
		t.Errorf("expected a-b-c-, got %q", got)
	}
	if got := sanitizeFilename("   "); got != "untitled" {
		t.Errorf("expected untitled, got %q", got)
	}
	long := strings.Repeat("é", 150)
	if got := sanitizeFilename(long); len([]rune(got)) != 100 {
		t.Errorf("expected 100 runes, got %d", len([]rune(got)))
	}
}

func TestLimitNotes(t *testing.T) {
	owner := uuid.New()
	list := []*models.Note{
		models.NewNote(owner, "a", "", false),
		models.NewNote(owner, "b", "", false),
		models.NewNote(owner, "c", "", false),
	}
	if got := limitNotes(list, 2); len(got) != 2 {
		t.Errorf("expected 2 notes, got %d", len(got))
	}
	if got := limitNotes(list, 0); len(got) != 3 {
		t.Errorf("expected no limit for 0, got %d", len(got))
	}
}
