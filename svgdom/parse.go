package svgdom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html/charset"
)

// elements silently skipped, with their content
var ignoredTags = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
}

// ReadDocumentStream reads an SVG document from the given io.Reader,
// resolves its styles and wires its animations.
// Only a subset of SVG is supported: `opts.ErrorMode` determines if
// the parser ignores, errors out, or logs a warning when it
// meets an unsupported element or an invalid attribute.
func ReadDocumentStream(stream io.Reader, opts Options) (*Document, error) {
	doc := newDocument(opts)
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel

	var (
		stack     []NodeID // currently open elements
		skipDepth int      // > 0 when inside an unsupported element
		rootDone  bool
	)
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if rootDone {
				return nil, fmt.Errorf("%w: content after the root element", ErrInvalidDocument)
			}
			tag, ok := tagByName[se.Name.Local]
			if !ok {
				if !ignoredTags[se.Name.Local] {
					if err := doc.warnf("cannot process svg element %s", se.Name.Local); err != nil {
						return nil, err
					}
				}
				skipDepth = 1
				continue
			}
			parent := NoNode
			if len(stack) != 0 {
				parent = stack[len(stack)-1]
			} else if tag != TagSvg {
				return nil, fmt.Errorf("%w: root element is <%s>", ErrInvalidDocument, se.Name.Local)
			}
			id, err := doc.readStartElement(tag, parent, se.Attr)
			if err != nil {
				return nil, err
			}
			if parent == NoNode {
				doc.root = id
			}
			stack = append(stack, id)
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if len(stack) != 0 {
				stack = stack[:len(stack)-1]
				rootDone = len(stack) == 0
			}
		case xml.CharData:
			if skipDepth > 0 || len(stack) == 0 {
				continue
			}
			if n := doc.nodes[stack[len(stack)-1]]; n.Tag == TagStyle {
				n.Text += string(se)
			}
		}
	}
	if doc.root == NoNode {
		return nil, ErrInvalidDocument
	}

	if err := doc.applyStyleSheets(); err != nil {
		return nil, err
	}
	doc.initStyle(doc.ctx, doc.root, nil)
	doc.wirePendingAnimations(doc.ctx)
	return doc, nil
}

// ReadDocument reads the SVG document from the named file.
// See ReadDocumentStream for more details.
func ReadDocument(path string, opts Options) (*Document, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return ReadDocumentStream(fin, opts)
}

// readStartElement creates the node and assigns its attributes
func (doc *Document) readStartElement(tag Tag, parent NodeID, attrs []xml.Attr) (NodeID, error) {
	id := doc.newNode(tag, parent)
	n := doc.nodes[id]
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		if err := n.SetAttr(attr.Name.Local, attr.Value); err != nil {
			if errors.Is(err, errUnknownAttr) {
				doc.logf("%s", err)
				continue
			}
			if err := doc.warnErr(err, "svg attribute"); err != nil {
				return id, err
			}
		}
	}
	doc.ctx.Push(n.ID, id)
	return id, nil
}

// applyStyleSheets registers the <style> rules in the context,
// then applies them to the nodes : tag selectors first, then classes
// and ids. The inline style attributes are applied last, since
// they take precedence over style sheets.
func (doc *Document) applyStyleSheets() error {
	hasRules := false
	for _, n := range doc.nodes {
		if n.Tag != TagStyle || strings.TrimSpace(n.Text) == "" {
			continue
		}
		sheet, err := parser.Parse(n.Text)
		if err != nil {
			if err := doc.warnErr(err, "invalid style sheet"); err != nil {
				return err
			}
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.Kind == css.AtRule {
				continue // not supported
			}
			for _, sel := range rule.Selectors {
				sel = strings.TrimSpace(sel)
				if !isSimpleSelector(sel) {
					doc.logf("unsupported css selector %q", sel)
					continue
				}
				for _, decl := range rule.Declarations {
					doc.ctx.pushSelectorStyle(sel, decl.Property, decl.Value)
					hasRules = true
				}
			}
		}
	}
	if !hasRules {
		return nil
	}

	for _, n := range doc.nodes {
		selectors := []string{n.Tag.String()}
		for _, class := range n.Class {
			selectors = append(selectors, "."+class)
		}
		if n.ID != "" {
			selectors = append(selectors, "#"+n.ID)
		}
		for _, sel := range selectors {
			for name, value := range doc.ctx.selectorStyle(sel) {
				if err := n.SetAttr(name, value); err != nil {
					if err := doc.warnErr(err, "css declaration"); err != nil {
						return err
					}
				}
			}
		}
		if n.inlineStyle != "" {
			if err := n.applyInlineStyle(n.inlineStyle); err != nil {
				if err := doc.warnErr(err, "style attribute"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// isSimpleSelector accepts .class, #id and tag names
func isSimpleSelector(sel string) bool {
	if sel == "" {
		return false
	}
	body := strings.TrimLeft(sel, ".#")
	if len(sel)-len(body) > 1 || body == "" {
		return false
	}
	return !strings.ContainsAny(body, " .#:[>+~*,")
}
