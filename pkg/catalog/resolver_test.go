package catalog

import (
	"strings"
	"testing"
)

func testCatalog() *Catalog {
	return &Catalog{
		Books: []Book{
			{
				Id:   "epidemiology",
				Name: "流行病学",
				Versions: []VersionInfo{
					{Version: "7", Filename: "epi_v7.pdf"},
					{Version: "8", Filename: "epi_v8.pdf"},
					{Version: "9", Filename: "epi_v9.docx"},
				},
			},
			{
				Id:   "physiology",
				Name: "生理学",
				Versions: []VersionInfo{
					{Version: "9", Filename: "phys_v9.pdf"},
				},
			},
			{
				Id:   "ethics",
				Name: "医学伦理学",
			},
		},
	}
}

func TestValidateExactBookAndVersion(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	v := r.Validate("流行病学", "8")
	if !v.IsValid {
		t.Fatalf("valid book+version rejected: %s", v.Message)
	}
	if v.Metadata.BookId != "epidemiology" || v.Metadata.Version != "8" {
		t.Errorf("metadata = %+v, want epidemiology v8", v.Metadata)
	}
	if v.Metadata.Filename != "epi_v8.pdf" {
		t.Errorf("filename = %q, want epi_v8.pdf", v.Metadata.Filename)
	}
}

func TestValidateDefaultsToLatestVersion(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	v := r.Validate("流行病学", "")
	if !v.IsValid {
		t.Fatalf("default-version lookup rejected: %s", v.Message)
	}
	if v.Metadata.Version != "9" {
		t.Errorf("resolved version = %q, want 9 (numerically greatest)", v.Metadata.Version)
	}
	if !strings.Contains(v.Message, "最新版本") {
		t.Errorf("message should state the latest-version assumption, got %q", v.Message)
	}
}

func TestValidateVersionNotFound(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	v := r.Validate("流行病学", "10")
	if v.IsValid {
		t.Fatal("version 10 should not validate")
	}
	if v.Kind != FailureVersionNotFound {
		t.Errorf("kind = %q, want %q", v.Kind, FailureVersionNotFound)
	}
	for _, want := range []string{"第7版", "第8版", "第9版"} {
		if !strings.Contains(v.Message, want) {
			t.Errorf("message %q should list %s", v.Message, want)
		}
	}
}

func TestValidateBookNotFound(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	v := r.Validate("内科学", "1")
	if v.IsValid {
		t.Fatal("unknown book should not validate")
	}
	if v.Kind != FailureBookNotFound {
		t.Errorf("kind = %q, want %q", v.Kind, FailureBookNotFound)
	}
	for _, want := range []string{"流行病学", "生理学", "医学伦理学"} {
		if !strings.Contains(v.Message, want) {
			t.Errorf("message %q should list %s", v.Message, want)
		}
	}
}

func TestValidateSubstringMatch(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	tests := []struct {
		name  string
		query string
	}{
		{"query contains catalog name", "流行病学教材"},
		{"catalog name contains query", "伦理学"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := r.findBook(tt.query)
			if book == nil {
				t.Fatalf("findBook(%q) = nil, want a match", tt.query)
			}
		})
	}
}

func TestValidateNoVersions(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	v := r.Validate("医学伦理学", "")
	if v.IsValid {
		t.Fatal("book without versions should not validate")
	}
	if v.Kind != FailureNoVersions {
		t.Errorf("kind = %q, want %q", v.Kind, FailureNoVersions)
	}
}

func TestLatestVersionSkipsNonNumeric(t *testing.T) {
	book := &Book{
		Id:   "x",
		Name: "X",
		Versions: []VersionInfo{
			{Version: "7"},
			{Version: "8a"},
			{Version: "9"},
		},
	}

	latest := latestVersion(book)
	if latest == nil || latest.Version != "9" {
		t.Errorf("latestVersion = %+v, want version 9", latest)
	}
}

func TestCollectionName(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	if got := r.CollectionName("流行病学", "7"); got != "epidemiology_v7" {
		t.Errorf("CollectionName = %q, want epidemiology_v7", got)
	}
	if got := r.CollectionName("不存在", "1"); got != "" {
		t.Errorf("CollectionName for unknown book = %q, want empty", got)
	}
}

func TestListAllBooksAndVersions(t *testing.T) {
	r := NewVersionResolver(testCatalog())

	listing := r.ListAllBooksAndVersions()
	for _, want := range []string{"• 流行病学: 第7版、第8版、第9版", "• 生理学: 第9版", "• 医学伦理学: 无可用版本"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing %q missing %q", listing, want)
		}
	}
}
