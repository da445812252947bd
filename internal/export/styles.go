package export

// screenCSS is the e-reader profile shared by the HTML export and the EPUB.
const screenCSS = `body {
  font-family: Georgia, "Times New Roman", serif;
  font-size: 1.1em;
  line-height: 1.6;
  color: #222;
  max-width: 40em;
  margin: 0 auto;
  padding: 2em 1.5em;
}
h1, h2, h3 {
  font-family: "Helvetica Neue", Arial, sans-serif;
  line-height: 1.25;
}
h1 { font-size: 2em; margin: 1.5em 0 0.75em; }
h2 { font-size: 1.5em; margin: 1.25em 0 0.5em; }
h3 { font-size: 1.2em; margin: 1em 0 0.5em; }
p { margin: 0 0 1em; text-align: justify; }
blockquote {
  margin: 1em 2em;
  padding-left: 1em;
  border-left: 3px solid #ccc;
  font-style: italic;
}
ul { margin: 0 0 1em 1.5em; }
.title-page { text-align: center; margin: 4em 0; }
.title-page .title { font-size: 2.5em; margin-bottom: 0.25em; }
.title-page .subtitle { font-size: 1.4em; color: #555; }
.title-page .author { font-size: 1.3em; margin-top: 2em; }
.copyright { font-size: 0.85em; color: #555; text-align: center; margin: 3em 0; }
.dedication { font-style: italic; text-align: center; margin: 4em 2em; }
.toc ol { list-style: none; padding: 0; }
.toc li { margin: 0.4em 0; }
.chapter { margin-top: 3em; }
.chapter-title { text-align: center; }
`

// printCSS targets a 6x9 inch paperback trim. Inside margins are wider than
// outside margins to leave room for the binding.
const printCSS = `@page {
  size: 6in 9in;
  margin-top: 0.75in;
  margin-bottom: 0.75in;
}
@page :left {
  margin-left: 0.5in;
  margin-right: 0.75in;
}
@page :right {
  margin-left: 0.75in;
  margin-right: 0.5in;
}
@page :first {
  margin-top: 2in;
}
body {
  font-family: "Garamond", "Palatino Linotype", Georgia, serif;
  font-size: 11pt;
  line-height: 1.45;
  color: #000;
  margin: 0;
  padding: 0;
  orphans: 2;
  widows: 2;
}
h1, h2, h3 { page-break-after: avoid; font-weight: normal; }
h1 { font-size: 20pt; margin: 0 0 18pt; }
h2 { font-size: 15pt; margin: 14pt 0 8pt; }
h3 { font-size: 12pt; margin: 12pt 0 6pt; font-style: italic; }
p { margin: 0; text-indent: 0.25in; text-align: justify; hyphens: auto; }
h1 + p, h2 + p, h3 + p, .chapter-title + p { text-indent: 0; }
blockquote { margin: 8pt 0.3in; font-style: italic; }
ul { margin: 6pt 0 6pt 0.3in; }
.title-page { text-align: center; page-break-after: always; padding-top: 2in; }
.title-page .title { font-size: 28pt; }
.title-page .subtitle { font-size: 16pt; }
.title-page .author { font-size: 14pt; margin-top: 1.5in; }
.copyright { font-size: 8pt; page-break-after: always; padding-top: 5in; }
.dedication { font-style: italic; text-align: center; padding-top: 2.5in; page-break-after: always; }
.chapter { page-break-before: always; padding-top: 1.5in; }
.chapter-title { text-align: center; }
`

// Stylesheet returns the print profile when forPrint is set and the screen
// profile otherwise.
func Stylesheet(forPrint bool) string {
	if forPrint {
		return printCSS
	}
	return screenCSS
}
