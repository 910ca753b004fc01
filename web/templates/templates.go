package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync/atomic"
	"time"

	"donationhub/internal/models"
)

//go:embed *.html
var templateFS embed.FS

// Templates holds all parsed templates
var Templates *template.Template

var assetOrigin atomic.Value

// SetAssetOrigin sets the server origin that relative upload paths resolve
// against, e.g. http://localhost:5000.
func SetAssetOrigin(origin string) {
	assetOrigin.Store(strings.TrimRight(origin, "/"))
}

// formatCurrency formats an amount in rupees with comma separators
func formatCurrency(v any) string {
	switch n := v.(type) {
	case float64:
		return models.Rupees(n)
	case int64:
		return models.Rupees(float64(n))
	case int:
		return models.Rupees(float64(n))
	}
	return models.Rupees(0)
}

// assetURL makes an image path from the backend absolute. Uploads are
// served from the API server's origin, not this one.
func assetURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "data:") {
		return path
	}
	if strings.HasPrefix(path, "//") {
		return "https:" + path
	}

	origin, _ := assetOrigin.Load().(string)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return origin + path
}

// titleCase turns an identifier such as "in-progress" or "ending_soon" into
// a label.
func titleCase(s string) string {
	if s == "" {
		return s
	}

	minorWords := map[string]bool{
		"of": true, "and": true, "the": true, "to": true, "for": true,
	}
	acronyms := map[string]bool{
		"NGO": true, "GST": true, "PAN": true, "API": true, "CSR": true,
	}

	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(s))
	for i, word := range words {
		if upper := strings.ToUpper(word); acronyms[upper] {
			words[i] = upper
			continue
		}
		lower := strings.ToLower(word)
		if i > 0 && minorWords[lower] {
			words[i] = lower
			continue
		}
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

func formatDate(v any) string {
	switch t := v.(type) {
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	case time.Time:
		return t.Format("Jan 2, 2006")
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.Format("Jan 2, 2006")
		}
		return t
	}
	return ""
}

func init() {
	var err error

	funcMap := template.FuncMap{
		"formatCurrency": formatCurrency,
		"titleCase":      titleCase,
		"assetURL":       assetURL,
		"formatDate":     formatDate,
		"add":            func(a, b int) int { return a + b },
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
	}

	Templates, err = template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html")
	if err != nil {
		panic("Failed to parse templates: " + err.Error())
	}
}

// Render executes the named template into w. The page is built in memory
// first so a failing template never leaves a half-written response.
func Render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := Templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// FS returns the embedded template files
func FS() fs.FS {
	return templateFS
}
