package notification

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	appnotification "github.com/corebank/backend/internal/application/notification"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// message templates keyed by notification template; the first line is the subject
var templateSources = map[string]string{
	appnotification.TemplateTransactionAlert: `{{ title (words .transaction_type) }} of {{ money .amount }} on {{ .entity_number }}
Dear {{ .customer_name }},

A {{ words .transaction_type }} of {{ money .amount }} was posted to {{ .entity_number }} on {{ datetime .posted_at }}.
Reference: {{ .transaction_number }}
{{- with .description }}
Description: {{ . }}
{{- end }}
Balance after this transaction: {{ money .balance }}

If you did not expect this transaction, contact your branch immediately.
`,
	appnotification.TemplateMaturityAlert: `{{ if .upcoming }}{{ .entity_number }} matures on {{ date .maturity_date }}{{ else }}{{ .entity_number }} has matured{{ end }}
Dear {{ .customer_name }},

{{ if .upcoming -}}
Your {{ words .entity_type }} {{ .entity_number }} matures on {{ date .maturity_date }}.
The maturity amount will be {{ money .maturity_amount }}.
{{- else -}}
Your {{ words .entity_type }} {{ .entity_number }} matured on {{ date .maturity_date }}.
The maturity amount is {{ money .maturity_amount }}.
{{- end }}
`,
}

// Renderer turns notification data into a subject and a plain-text body,
// formatting amounts for the configured locale
type Renderer struct {
	templates map[string]*template.Template
	printer   *message.Printer
}

// NewRenderer parses the message templates for locale, a BCP 47 tag such as
// "en-IN". An unparsable tag falls back to English.
func NewRenderer(locale string) (*Renderer, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	r := &Renderer{
		templates: make(map[string]*template.Template, len(templateSources)),
		printer:   message.NewPrinter(tag),
	}

	funcs := template.FuncMap{
		"money":    r.formatMoney,
		"date":     formatDate,
		"datetime": formatDateTime,
		"words":    words,
		// a Caser keeps state, so each call gets its own
		"title": func(s string) string { return cases.Title(tag).String(s) },
	}
	for key, src := range templateSources {
		tmpl, err := template.New(key).Funcs(funcs).Option("missingkey=zero").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", key, err)
		}
		r.templates[key] = tmpl
	}
	return r, nil
}

// Render returns the subject and body for n
func (r *Renderer) Render(n appnotification.Notification) (subject, body string, err error) {
	tmpl, ok := r.templates[n.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown notification template %q", n.Template)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", n.Template, err)
	}
	subject, body, _ = strings.Cut(buf.String(), "\n")
	return strings.TrimSpace(subject), strings.TrimLeft(body, "\n"), nil
}

// formatMoney groups digits the way the locale does and always shows two decimals
func (r *Renderer) formatMoney(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		d = *x
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return x
		}
		d = parsed
	default:
		return fmt.Sprint(v)
	}
	return r.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

func formatDate(v any) string {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return t.UTC().Format("02 Jan 2006")
	}
	return ""
}

func formatDateTime(v any) string {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return t.UTC().Format("02 Jan 2006 15:04 UTC")
	}
	return ""
}

// words turns identifiers such as rd_installment or FixedDeposit into plain words
func words(v any) string {
	s := fmt.Sprint(v)
	var b strings.Builder
	for i, c := range s {
		switch {
		case c == '_':
			b.WriteByte(' ')
		case c >= 'A' && c <= 'Z':
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(c + ('a' - 'A'))
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
