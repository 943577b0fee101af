package dupes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dlassist/internal/dupes"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindByHash(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "incoming", "song.mp3")
	writeFile(t, candidate, "same content")
	writeFile(t, filepath.Join(dir, "dest", "other.mp3"), "same content")
	writeFile(t, filepath.Join(dir, "dest", "different.mp3"), "different content")
	writeFile(t, filepath.Join(dir, "dest", "nested", "copy.mp3"), "same content")

	resolver := dupes.NewResolver(dupes.MethodHash)
	matches, err := resolver.Find(context.Background(), candidate, filepath.Join(dir, "dest"))
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", matches)
	}
	for _, match := range matches {
		base := filepath.Base(match)
		if base != "other.mp3" && base != "copy.mp3" {
			t.Fatalf("unexpected match %q", match)
		}
	}
}

func TestFindBySizeMatchesEqualLengths(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "a.bin")
	writeFile(t, candidate, "12345")
	writeFile(t, filepath.Join(dir, "dest", "same-size.bin"), "abcde")
	writeFile(t, filepath.Join(dir, "dest", "longer.bin"), "abcdef")

	resolver := dupes.NewResolver(dupes.MethodSize)
	matches, err := resolver.Find(context.Background(), candidate, filepath.Join(dir, "dest"))
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != "same-size.bin" {
		t.Fatalf("unexpected matches %v", matches)
	}
}

func TestFindBothRequiresSizeAndHash(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "a.bin")
	writeFile(t, candidate, "12345")
	// Same size, different content: not a duplicate under "both".
	writeFile(t, filepath.Join(dir, "dest", "same-size.bin"), "abcde")
	writeFile(t, filepath.Join(dir, "dest", "identical.bin"), "12345")

	resolver := dupes.NewResolver(dupes.MethodBoth)
	matches, err := resolver.Find(context.Background(), candidate, filepath.Join(dir, "dest"))
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(matches) != 1 || filepath.Base(matches[0]) != "identical.bin" {
		t.Fatalf("unexpected matches %v", matches)
	}
}

func TestFindSkipsCandidateItself(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "dest", "song.mp3")
	writeFile(t, candidate, "content")

	resolver := dupes.NewResolver(dupes.MethodHash)
	matches, err := resolver.Find(context.Background(), candidate, filepath.Join(dir, "dest"))
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("candidate reported as its own duplicate: %v", matches)
	}

	// A hard link to the candidate is the same file and must be skipped too.
	linked := filepath.Join(dir, "dest", "linked.mp3")
	if err := os.Link(candidate, linked); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}
	matches, err = resolver.Find(context.Background(), candidate, filepath.Join(dir, "dest"))
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("hard link reported as duplicate: %v", matches)
	}
}

func TestFindAbsentDirectoryYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	candidate := filepath.Join(dir, "a.bin")
	writeFile(t, candidate, "x")

	resolver := dupes.NewResolver(dupes.MethodHash)
	matches, err := resolver.Find(context.Background(), candidate, filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("expected absent directory to yield empty result, got error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("unexpected matches %v", matches)
	}
}

func TestHashFileStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	writeFile(t, path, "hello")

	first, err := dupes.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := dupes.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("hash not stable: %q vs %q", first, second)
	}
	// Known SHA-256 of "hello".
	if first != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected digest %q", first)
	}
}

func TestNewResolverUnknownMethodFallsBackToHash(t *testing.T) {
	resolver := dupes.NewResolver("fuzzy")
	if resolver.Method() != dupes.MethodHash {
		t.Fatalf("unexpected method %q", resolver.Method())
	}
}
