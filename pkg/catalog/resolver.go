package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// FailureKind classifies why validation rejected a query. BookNotFound and
// VersionNotFound get the full catalog listing appended to their user-facing
// message by the error handler.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureBookNotFound    FailureKind = "book_not_found"
	FailureVersionNotFound FailureKind = "version_not_found"
	FailureNoVersions      FailureKind = "no_versions"
)

// BookMetadata is the resolved edition returned on successful validation.
type BookMetadata struct {
	BookId   string
	BookName string
	VersionInfo
}

// Validation is the outcome of resolving a (book, version) reference.
type Validation struct {
	IsValid  bool
	Kind     FailureKind
	Message  string
	Metadata BookMetadata
}

// VersionResolver maps free-text book/edition references to canonical catalog
// entries.
type VersionResolver struct {
	catalog *Catalog
}

func NewVersionResolver(c *Catalog) *VersionResolver {
	return &VersionResolver{catalog: c}
}

// Validate resolves bookName and version against the catalog. An empty
// version selects the latest numeric edition and notes the assumption in the
// message. On success Metadata carries the resolved edition, including the
// version actually chosen.
func (r *VersionResolver) Validate(bookName, version string) Validation {
	book := r.findBook(bookName)
	if book == nil {
		return Validation{
			Kind: FailureBookNotFound,
			Message: fmt.Sprintf("系统中没有找到《%s》这本书。\n\n可用书籍：\n%s",
				bookName, r.availableBooks()),
		}
	}

	if version == "" {
		latest := latestVersion(book)
		if latest == nil {
			return Validation{
				Kind:    FailureNoVersions,
				Message: fmt.Sprintf("《%s》没有可用的版本", book.Name),
			}
		}
		return Validation{
			IsValid:  true,
			Message:  fmt.Sprintf("未指定版本，自动使用最新版本：第%s版", latest.Version),
			Metadata: BookMetadata{BookId: book.Id, BookName: book.Name, VersionInfo: *latest},
		}
	}

	for _, v := range book.Versions {
		if v.Version == version {
			return Validation{
				IsValid:  true,
				Metadata: BookMetadata{BookId: book.Id, BookName: book.Name, VersionInfo: v},
			}
		}
	}

	return Validation{
		Kind: FailureVersionNotFound,
		Message: fmt.Sprintf("《%s》没有第%s版。\n\n可用版本：\n%s",
			book.Name, version, availableVersions(book)),
	}
}

// CollectionName returns the canonical vector-index partition for a resolved
// (book, version) pair: "{book_id}_v{version}". Empty if the book is unknown.
func (r *VersionResolver) CollectionName(bookName, version string) string {
	book := r.findBook(bookName)
	if book == nil {
		return ""
	}
	return fmt.Sprintf("%s_v%s", book.Id, version)
}

// ListAllBooksAndVersions renders the whole catalog for user-facing error
// messages, one bullet line per book.
func (r *VersionResolver) ListAllBooksAndVersions() string {
	if len(r.catalog.Books) == 0 {
		return "暂无可用书籍"
	}

	var lines []string
	for _, book := range r.catalog.Books {
		if len(book.Versions) == 0 {
			lines = append(lines, fmt.Sprintf("• %s: 无可用版本", book.Name))
			continue
		}
		var versions []string
		for _, v := range book.Versions {
			versions = append(versions, fmt.Sprintf("第%s版", v.Version))
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", book.Name, strings.Join(versions, "、")))
	}
	return strings.Join(lines, "\n")
}

// findBook tries an exact name match first, then a bidirectional substring
// match ("流行病学教材" should still find "流行病学", and vice versa).
func (r *VersionResolver) findBook(name string) *Book {
	if name == "" {
		return nil
	}
	for i := range r.catalog.Books {
		if r.catalog.Books[i].Name == name {
			return &r.catalog.Books[i]
		}
	}
	for i := range r.catalog.Books {
		b := &r.catalog.Books[i]
		if strings.Contains(name, b.Name) || strings.Contains(b.Name, name) {
			return b
		}
	}
	return nil
}

func (r *VersionResolver) availableBooks() string {
	if len(r.catalog.Books) == 0 {
		return "暂无可用书籍"
	}
	var names []string
	for _, b := range r.catalog.Books {
		names = append(names, b.Name)
	}
	return strings.Join(names, "、")
}

func availableVersions(book *Book) string {
	if len(book.Versions) == 0 {
		return "无可用版本"
	}
	var versions []string
	for _, v := range book.Versions {
		versions = append(versions, fmt.Sprintf("第%s版", v.Version))
	}
	return strings.Join(versions, "、")
}

// latestVersion picks the edition with the numerically greatest version
// string. Non-numeric identifiers have no defined ordering and are skipped;
// a book with only non-numeric versions resolves to none.
func latestVersion(book *Book) *VersionInfo {
	best := -1
	var latest *VersionInfo
	for i := range book.Versions {
		n, err := strconv.Atoi(book.Versions[i].Version)
		if err != nil {
			continue
		}
		if n > best {
			best = n
			latest = &book.Versions[i]
		}
	}
	return latest
}
