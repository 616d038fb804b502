package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

func markdownToHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

const reportCSS = `body { font-family: Arial, sans-serif; line-height: 1.6; margin: 40px; color: #333; }
h1 { color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; }
h2 { color: #34495e; margin-top: 30px; }
h3 { color: #7f8c8d; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
th { background-color: #3498db; color: white; }
strong { color: #2c3e50; }
hr { border: none; border-top: 1px solid #ecf0f1; margin: 30px 0; }`

// wrapHTML produces a standalone styled document around converted body HTML.
func wrapHTML(title, bodyHTML string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n", reportCSS)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(bodyHTML)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// stripInline removes the markdown emphasis markers that line-based
// renderers print literally otherwise.
func stripInline(line string) string {
	return strings.ReplaceAll(line, "**", "")
}
