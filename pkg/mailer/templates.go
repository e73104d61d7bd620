package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

var subjects = map[string]string{
	TemplateConfirm: "Confirm your account",
	TemplateReset:   "Reset your password",
}

var textBodies = map[string]*texttpl.Template{
	TemplateConfirm: texttpl.Must(texttpl.New(TemplateConfirm).Parse(
		"Hello {{.Name}},\n\nWelcome! Please confirm your account by visiting the link below within 24 hours:\n\n{{.Link}}\n\nIf you did not sign up, you can ignore this email.\n")),
	TemplateReset: texttpl.Must(texttpl.New(TemplateReset).Parse(
		"Hello {{.Name}},\n\nA password reset was requested for your account. The link below is valid for 24 hours:\n\n{{.Link}}\n\nIf you did not request this, you can ignore this email.\n")),
}

var htmlBodies = map[string]*htmpl.Template{
	TemplateConfirm: htmpl.Must(htmpl.New(TemplateConfirm).Parse(
		`<p>Hello {{.Name}},</p><p>Welcome! Please confirm your account by clicking the link below within 24 hours:</p><p><a href="{{.Link}}">Confirm my account</a></p><p>If you did not sign up, you can ignore this email.</p>`)),
	TemplateReset: htmpl.Must(htmpl.New(TemplateReset).Parse(
		`<p>Hello {{.Name}},</p><p>A password reset was requested for your account. The link below is valid for 24 hours:</p><p><a href="{{.Link}}">Reset my password</a></p><p>If you did not request this, you can ignore this email.</p>`)),
}

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", "", fmt.Errorf("mailer: unknown template %q", name)
	}

	var tb bytes.Buffer
	if err := textBodies[name].Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	var hb bytes.Buffer
	if err := htmlBodies[name].Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return subject, tb.String(), hb.String(), nil
}
