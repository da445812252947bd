package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

const (
	epubMimetype  = "application/epub+zip"
	containerPath = "META-INF/container.xml"
	opfPath       = "OEBPS/content.opf"
	navPath       = "OEBPS/nav.xhtml"
	titlePath     = "OEBPS/title.xhtml"
	cssPath       = "OEBPS/styles.css"
)

// now is replaced in tests.
var now = time.Now

// EPUBFile is one file of the unpacked EPUB tree.
type EPUBFile struct {
	Path    string
	Content string
}

// BuildEPUBTree returns the EPUB file tree in archive order: mimetype first,
// then container, package document, navigation, title page, stylesheet and
// one XHTML file per chapter.
func BuildEPUBTree(book *Book) []EPUBFile {
	if book == nil {
		book = &Book{}
	}

	files := []EPUBFile{
		{Path: "mimetype", Content: epubMimetype},
		{Path: containerPath, Content: containerXML()},
		{Path: opfPath, Content: packageDocument(book)},
		{Path: navPath, Content: navDocument(book)},
		{Path: titlePath, Content: titleDocument(book)},
		{Path: cssPath, Content: screenCSS},
	}
	for i, ch := range book.Chapters {
		files = append(files, EPUBFile{
			Path:    "OEBPS/" + chapterFile(i),
			Content: chapterDocument(book, ch, i),
		})
	}
	return files
}

// GenerateBookEPUB describes the EPUB as a JSON object mapping archive paths to
// file contents. Use PackageEPUB for an actual .epub archive.
func GenerateBookEPUB(book *Book) (*Result, error) {
	tree := BuildEPUBTree(book)
	files := make(map[string]string, len(tree))
	for _, f := range tree {
		files[f.Path] = f.Content
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal epub tree: %w", err)
	}

	title := ""
	if book != nil {
		title = book.Title
	}
	return &Result{
		Content:     data,
		Filename:    Slugify(title) + ".epub.json",
		ContentType: "application/json",
	}, nil
}

// PackageEPUB zips the EPUB tree. The mimetype entry is written first and
// stored uncompressed as required by the OCF container format.
func PackageEPUB(book *Book) (*Result, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range BuildEPUBTree(book) {
		header := &zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: now().UTC(),
		}
		if f.Path == "mimetype" {
			header.Method = zip.Store
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Path, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close epub archive: %w", err)
	}

	title := ""
	if book != nil {
		title = book.Title
	}
	return &Result{
		Content:     buf.Bytes(),
		Filename:    Slugify(title) + ".epub",
		ContentType: epubMimetype,
	}, nil
}

func chapterFile(index int) string {
	return fmt.Sprintf("chapter-%d.xhtml", index+1)
}

// bookIdentifier prefers the ISBN. Without one a name-based UUID keeps the
// identifier stable across exports of the same title and author.
func bookIdentifier(book *Book) string {
	if isbn := strings.TrimSpace(book.meta().ISBN); isbn != "" {
		return "urn:isbn:" + isbn
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(book.Title+"\x00"+book.Author))
	return "urn:uuid:" + id.String()
}

func xmlDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	return doc
}

func render(doc *etree.Document) string {
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		// Writing to a strings.Builder does not fail.
		return ""
	}
	return s
}

func containerXML() string {
	doc := xmlDocument()
	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")
	rootfile := container.CreateElement("rootfiles").CreateElement("rootfile")
	rootfile.CreateAttr("full-path", opfPath)
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")
	return render(doc)
}

func packageDocument(book *Book) string {
	meta := book.meta()

	doc := xmlDocument()
	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("version", "3.0")
	pkg.CreateAttr("unique-identifier", "book-id")
	pkg.CreateAttr("xml:lang", book.Language())

	md := pkg.CreateElement("metadata")
	md.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	id := md.CreateElement("dc:identifier")
	id.CreateAttr("id", "book-id")
	id.SetText(bookIdentifier(book))
	md.CreateElement("dc:title").SetText(book.Title)
	md.CreateElement("dc:creator").SetText(book.Author)
	md.CreateElement("dc:language").SetText(book.Language())
	if book.Description != "" {
		md.CreateElement("dc:description").SetText(book.Description)
	}
	if meta.Publisher != "" {
		md.CreateElement("dc:publisher").SetText(meta.Publisher)
	}
	if meta.PublishedDate != "" {
		md.CreateElement("dc:date").SetText(meta.PublishedDate)
	}
	if meta.Genre != "" {
		md.CreateElement("dc:subject").SetText(meta.Genre)
	}
	if meta.Copyright != "" {
		md.CreateElement("dc:rights").SetText(meta.Copyright)
	}
	modified := md.CreateElement("meta")
	modified.CreateAttr("property", "dcterms:modified")
	modified.SetText(now().UTC().Format("2006-01-02T15:04:05Z"))

	manifest := pkg.CreateElement("manifest")
	addItem := func(id, href, mediaType, properties string) {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", id)
		item.CreateAttr("href", href)
		item.CreateAttr("media-type", mediaType)
		if properties != "" {
			item.CreateAttr("properties", properties)
		}
	}
	addItem("nav", "nav.xhtml", "application/xhtml+xml", "nav")
	addItem("title", "title.xhtml", "application/xhtml+xml", "")
	addItem("css", "styles.css", "text/css", "")
	for i := range book.Chapters {
		addItem(fmt.Sprintf("chapter-%d", i+1), chapterFile(i), "application/xhtml+xml", "")
	}

	spine := pkg.CreateElement("spine")
	spine.CreateElement("itemref").CreateAttr("idref", "title")
	for i := range book.Chapters {
		spine.CreateElement("itemref").CreateAttr("idref", fmt.Sprintf("chapter-%d", i+1))
	}

	return render(doc)
}

func navDocument(book *Book) string {
	doc := xmlDocument()
	doc.CreateDirective("DOCTYPE html")
	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")
	html.CreateAttr("xml:lang", book.Language())

	head := html.CreateElement("head")
	head.CreateElement("title").SetText(book.Title)
	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", "styles.css")

	nav := html.CreateElement("body").CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateElement("h1").SetText("Contents")
	ol := nav.CreateElement("ol")
	for i, ch := range book.Chapters {
		a := ol.CreateElement("li").CreateElement("a")
		a.CreateAttr("href", chapterFile(i))
		a.SetText(chapterTitle(ch, i))
	}

	return render(doc)
}

const xhtmlPage = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" xml:lang="%s">
<head>
<title>%s</title>
<link rel="stylesheet" type="text/css" href="styles.css" />
</head>
<body>
%s
</body>
</html>
`

func titleDocument(book *Book) string {
	var b strings.Builder
	b.WriteString("<section class=\"title-page\" epub:type=\"titlepage\">\n")
	fmt.Fprintf(&b, "<h1 class=\"title\">%s</h1>\n", EscapeHTML(book.Title))
	if book.Subtitle != "" {
		fmt.Fprintf(&b, "<p class=\"subtitle\">%s</p>\n", EscapeHTML(book.Subtitle))
	}
	fmt.Fprintf(&b, "<p class=\"author\">%s</p>\n", EscapeHTML(book.Author))
	b.WriteString("</section>")
	if book.Dedication != "" {
		fmt.Fprintf(&b, "\n<section class=\"dedication\" epub:type=\"dedication\">%s</section>", inline(book.Dedication))
	}
	return fmt.Sprintf(xhtmlPage, EscapeHTML(book.Language()), EscapeHTML(book.Title), b.String())
}

func chapterDocument(book *Book, ch Chapter, index int) string {
	title := chapterTitle(ch, index)

	var b strings.Builder
	fmt.Fprintf(&b, "<section class=\"chapter\" epub:type=\"chapter\" id=\"chapter-%d\">\n", index+1)
	fmt.Fprintf(&b, "<h1 class=\"chapter-title\">%s</h1>\n", EscapeHTML(title))
	if body := ContentToHTML(ch.Content); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("</section>")
	return fmt.Sprintf(xhtmlPage, EscapeHTML(book.Language()), EscapeHTML(title), b.String())
}
