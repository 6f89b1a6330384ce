package importer

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nikbrunner/burst/internal/model"
)

// ParseHTMLBookmarks parses Netscape bookmark HTML into a raw tree.
// Every node gets a fresh UUID; ADD_DATE seconds become epoch milliseconds;
// <HR> becomes a separator node.
func ParseHTMLBookmarks(r io.Reader) ([]*model.RawNode, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := &model.RawNode{}

	// Track current folder stack for hierarchy
	stack := []*model.RawNode{root}
	var pendingFolder *model.RawNode // folder waiting to be pushed on next DL

	appendChild := func(n *model.RawNode) {
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				// Folder definition - get name from text content
				folder := &model.RawNode{
					ID:        model.GenerateUUID(),
					Title:     getTextContent(n),
					DateAdded: addDate(n),
					Children:  []*model.RawNode{},
				}
				appendChild(folder)

				// Mark this folder as pending - will be pushed when we see the next DL
				pendingFolder = folder
				return // Don't recurse into H3

			case "a":
				// Bookmark definition
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				appendChild(&model.RawNode{
					ID:        model.GenerateUUID(),
					Title:     getTextContent(n),
					URL:       &href,
					DateAdded: addDate(n),
				})
				return // Don't recurse into A

			case "hr":
				appendChild(&model.RawNode{
					ID:   model.GenerateUUID(),
					Type: "separator",
				})
				return

			case "dl":
				// Definition list - marks folder contents
				// If we have a pending folder, push it now
				pushedFolder := false
				if pendingFolder != nil {
					stack = append(stack, pendingFolder)
					pendingFolder = nil
					pushedFolder = true
				}

				// Process children
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Pop if we pushed
				if pushedFolder && len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
				return // Don't recurse further, we handled children
			}
		}

		// Recurse into children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	if root.Children == nil {
		return []*model.RawNode{}, nil
	}
	return root.Children, nil
}

// addDate returns ADD_DATE (epoch seconds) in milliseconds, or 0.
func addDate(n *html.Node) int64 {
	v := getAttr(n, "add_date")
	if v == "" {
		return 0
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return ts * 1000
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
