package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"
)

// MagicLinkMailer renderiza y envía los correos de magic link.
type MagicLinkMailer struct {
	Sender      Sender
	AppName     string
	FrontendURL string
}

type magicLinkData struct {
	AppName   string
	VerifyURL string
	ExpiresIn string
	Email     string
}

var magicLinkHTML = template.Must(template.New("magic_html").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: -apple-system, Segoe UI, Roboto, sans-serif; background:#f6f8fa; padding:24px;">
    <div style="max-width:480px;margin:0 auto;background:#ffffff;border-radius:8px;padding:32px;">
      <h2 style="margin-top:0;">Iniciar sesión en {{.AppName}}</h2>
      <p>Hacé click en el botón para iniciar sesión con <strong>{{.Email}}</strong>:</p>
      <p style="text-align:center;margin:32px 0;">
        <a href="{{.VerifyURL}}" style="background:#2563eb;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;">Iniciar sesión</a>
      </p>
      <p style="color:#6b7280;font-size:13px;">El enlace expira en {{.ExpiresIn}} y solo puede usarse una vez. Si no pediste este email, podés ignorarlo.</p>
    </div>
  </body>
</html>`))

var magicLinkText = texttemplate.Must(texttemplate.New("magic_text").Parse(`Iniciar sesión en {{.AppName}}

Abrí este enlace para iniciar sesión con {{.Email}}:

{{.VerifyURL}}

El enlace expira en {{.ExpiresIn}} y solo puede usarse una vez.
Si no pediste este email, podés ignorarlo.
`))

// SendMagicLink envía el correo de login/signup con el enlace de verificación.
func (m *MagicLinkMailer) SendMagicLink(to, verifyURL string, ttl time.Duration) error {
	data := magicLinkData{
		AppName:   m.AppName,
		VerifyURL: verifyURL,
		ExpiresIn: formatTTL(ttl),
		Email:     to,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := magicLinkHTML.Execute(&htmlBuf, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := magicLinkText.Execute(&textBuf, data); err != nil {
		return fmt.Errorf("render text: %w", err)
	}

	subject := fmt.Sprintf("Tu enlace de acceso a %s", m.AppName)
	return m.Sender.Send(to, subject, htmlBuf.String(), textBuf.String())
}

func formatTTL(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%d horas", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutos", int(d.Minutes()))
}
