package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
)

// Word renders the report as a Word-compatible HTML document saved with a
// .doc extension. Word opens these natively with styles intact.
func Word(job Job) (string, error) {
	bodyHTML, err := markdownToHTML(job.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word">` + "\n")
	b.WriteString("<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(job.Title))
	b.WriteString("<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View></w:WordDocument></xml><![endif]-->\n")
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n", reportCSS)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(bodyHTML)
	b.WriteString("\n</body>\n</html>\n")

	path := filepath.Join(job.OutDir, job.BaseName+".doc")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write doc: %w", err)
	}
	return path, nil
}

// PlainText is the Word fallback: the raw markdown body as a .txt file.
func PlainText(job Job) (string, error) {
	path := filepath.Join(job.OutDir, job.BaseName+".txt")
	if err := os.WriteFile(path, []byte(job.Body), 0o644); err != nil {
		return "", fmt.Errorf("failed to write txt: %w", err)
	}
	return path, nil
}
