package exporter

import (
	"strings"
	"testing"

	"gotest.tools/v3/golden"

	"github.com/nikbrunner/burst/internal/model"
)

func bookmark(id, title, url string, dateAdded int64) *model.Node {
	return model.NewBookmark(model.NewBookmarkParams{ID: id, Title: title, URL: url, DateAdded: dateAdded})
}

func folder(id, title string, children ...*model.Node) *model.Node {
	return model.NewFolder(model.NewFolderParams{ID: id, Title: title, Children: children})
}

func TestExportHTML_EmptyTree(t *testing.T) {
	html := ExportHTML(model.Tree{})

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	html := ExportHTML(model.Tree{bookmark("b1", "GitHub", "https://github.com", 1700000000000)})

	if !strings.Contains(html, `<A HREF="https://github.com"`) {
		t.Error("expected bookmark URL")
	}
	if !strings.Contains(html, "GitHub</A>") {
		t.Error("expected bookmark title")
	}
	if !strings.Contains(html, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp in seconds")
	}
}

func TestExportHTML_KeepsSiblingOrder(t *testing.T) {
	tree := model.Tree{
		bookmark("b1", "Root Bookmark", "https://example.com", 0),
		folder("f1", "Folder A"),
		folder("f2", "Folder B"),
	}

	html := ExportHTML(tree)

	rootIdx := strings.Index(html, "Root Bookmark</A>")
	aIdx := strings.Index(html, "Folder A</H3>")
	bIdx := strings.Index(html, "Folder B</H3>")

	if rootIdx == -1 || aIdx == -1 || bIdx == -1 {
		t.Fatal("missing elements in output")
	}
	if rootIdx >= aIdx || aIdx >= bIdx {
		t.Error("expected tree order: Root Bookmark, Folder A, Folder B")
	}
	if strings.Contains(html, "ADD_DATE") {
		t.Error("ADD_DATE should be omitted when unknown")
	}
}

func TestExportHTML_NestedFolders(t *testing.T) {
	tree := model.Tree{
		folder("f1", "Development",
			folder("f2", "React",
				bookmark("b1", "TanStack Router", "https://tanstack.com/router", 1700000000000),
			),
			bookmark("b2", "GitHub", "https://github.com", 1700000000000),
		),
	}

	golden.Assert(t, ExportHTML(tree), "nested.golden")
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	html := ExportHTML(model.Tree{
		bookmark("b1", "Test <script>alert('xss')</script>", "https://example.com?foo=bar&baz=qux", 0),
	})

	// Title should be escaped
	if strings.Contains(html, "<script>") {
		t.Error("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}

	// URL should be escaped
	if strings.Contains(html, "foo=bar&baz") {
		t.Error("ampersand should be escaped in URL")
	}
	if !strings.Contains(html, "foo=bar&amp;baz") {
		t.Error("expected escaped ampersand in URL")
	}
}
