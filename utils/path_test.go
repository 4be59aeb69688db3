package utils

import (
	"path/filepath"
	"testing"
)

func TestNormalizeExcludes(t *testing.T) {
	sep := string(filepath.Separator)
	res := NormalizeExcludes([]string{
		" " + sep + "Data" + sep + "Excluded1" + sep + " ",
		"",
		sep + "tmp",
	})
	if len(res) != 2 {
		t.Fatalf("unexpected result: %v", res)
	}
	if res[0] != sep+"data"+sep+"excluded1" {
		t.Fatalf("unexpected normalization: %q", res[0])
	}
	if res[1] != sep+"tmp" {
		t.Fatalf("unexpected normalization: %q", res[1])
	}
}

func TestIsExcluded(t *testing.T) {
	prefixes := NormalizeExcludes([]string{"/data/excluded1"})

	if !IsExcluded("/data/excluded1", prefixes) {
		t.Fatal("expected exact match to be excluded")
	}
	if !IsExcluded("/data/excluded1/nested/deep", prefixes) {
		t.Fatal("expected nested directory to be excluded")
	}
	if !IsExcluded("/DATA/Excluded1/sub", prefixes) {
		t.Fatal("expected case-insensitive match")
	}
	if !IsExcluded("/data/excluded1/", prefixes) {
		t.Fatal("expected trailing separator to be ignored")
	}
	if IsExcluded("/data/other", prefixes) {
		t.Fatal("unexpected exclusion of unrelated directory")
	}
	// Prefix semantics: a sibling sharing the prefix is also caught.
	if !IsExcluded("/data/excluded1extra", prefixes) {
		t.Fatal("expected prefix over-match to apply")
	}
}

func TestIsExcludedEmptySet(t *testing.T) {
	if IsExcluded("/anything", nil) {
		t.Fatal("empty exclusion set must exclude nothing")
	}
}
