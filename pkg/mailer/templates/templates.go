package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

var subjects = map[string]string{
	"verify_email": "Verify your email address",
}

// NewVerifyEmailData builds the template payload for the verification email.
// The link embeds the account id and the plaintext token; the token itself is
// never persisted anywhere.
func NewVerifyEmailData(appName, name, email, verifyURL string, expiresAt time.Time) map[string]any {
	return map[string]any{
		"AppName":       appName,
		"Name":          name,
		"Email":         email,
		"VerifyURL":     verifyURL,
		"ExpiresAtText": expiresAt.UTC().Format("02 January 2006, 15:04 MST"),
	}
}

// Render renders the named template and returns its subject and HTML body.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	t, err := htmpl.ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
