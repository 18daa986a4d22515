package preview

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// pageMetadata holds what was salvageable from a fetched page.
// Fields the page does not declare stay empty.
type pageMetadata struct {
	Title       string
	Description string
	ImageURL    string
}

// parsePage extracts Open Graph metadata from an HTML document, falling back
// to the <title> element when og:title is absent.
func parsePage(r io.Reader) pageMetadata {
	doc, err := html.Parse(r)
	if err != nil {
		// html.Parse is lenient; an error here means the body was unreadable
		return pageMetadata{}
	}

	var meta pageMetadata
	var pageTitle string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				var property, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}
				switch property {
				case "og:title":
					if meta.Title == "" {
						meta.Title = content
					}
				case "og:description":
					if meta.Description == "" {
						meta.Description = content
					}
				case "og:image":
					if meta.ImageURL == "" {
						meta.ImageURL = content
					}
				}
			case "title":
				if pageTitle == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					pageTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = pageTitle
	}
	return meta
}
