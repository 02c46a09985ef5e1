// File: internal/services/mail/template.go
package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Templates are authored in Markdown and rendered to HTML at send time, so
// the plain-text body and the HTML body come from the same source.
const verificationTemplate = `# Confirm your email address

Hello **{{.Username}}**,

Use this code to verify your account:

## {{.Code}}

The code expires in {{.TTL}}. If you did not create an account, ignore this
message.
`

const passwordResetTemplate = `# Password reset requested

Hello **{{.Username}}**,

Use this code to reset your password:

## {{.Code}}

The code expires in {{.TTL}}. If you did not request a reset, ignore this
message and your password stays unchanged.
`

type templateData struct {
	Username string
	Code     string
	TTL      string
}

// Renderer turns a Markdown template plus data into the HTML and text bodies
// of a Message.
type Renderer struct {
	markdown     goldmark.Markdown
	verification *template.Template
	reset        *template.Template
}

func NewRenderer() (*Renderer, error) {
	verification, err := template.New("verification").Parse(verificationTemplate)
	if err != nil {
		return nil, &MailError{Type: ErrTypeTemplate, Message: "failed to parse verification template", Cause: err}
	}
	reset, err := template.New("reset").Parse(passwordResetTemplate)
	if err != nil {
		return nil, &MailError{Type: ErrTypeTemplate, Message: "failed to parse reset template", Cause: err}
	}

	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		verification: verification,
		reset:        reset,
	}, nil
}

// RenderVerification builds the email-verification message bodies.
func (r *Renderer) RenderVerification(username, code, ttl string) (htmlBody, textBody string, err error) {
	return r.render(r.verification, templateData{Username: username, Code: code, TTL: ttl})
}

// RenderPasswordReset builds the password-reset message bodies.
func (r *Renderer) RenderPasswordReset(username, code, ttl string) (htmlBody, textBody string, err error) {
	return r.render(r.reset, templateData{Username: username, Code: code, TTL: ttl})
}

func (r *Renderer) render(tmpl *template.Template, data templateData) (string, string, error) {
	var markdownBuf bytes.Buffer
	if err := tmpl.Execute(&markdownBuf, data); err != nil {
		return "", "", &MailError{
			Type:    ErrTypeTemplate,
			Message: fmt.Sprintf("failed to execute template %q", tmpl.Name()),
			Cause:   err,
		}
	}

	var htmlBuf bytes.Buffer
	if err := r.markdown.Convert(markdownBuf.Bytes(), &htmlBuf); err != nil {
		return "", "", &MailError{
			Type:    ErrTypeTemplate,
			Message: fmt.Sprintf("failed to render template %q to HTML", tmpl.Name()),
			Cause:   err,
		}
	}

	return htmlBuf.String(), markdownBuf.String(), nil
}
