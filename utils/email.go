package utils

import (
	"fmt"
	"html"
	"log"
	"sort"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass}
}

// SendEmail delivers a single HTML email. Callers on the request path must
// not block on this; use SendAsync.
func (m *Mailer) SendEmail(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendAsync is the best-effort notify primitive: it spawns the send and
// routes failures to the log instead of the caller's error channel.
func (m *Mailer) SendAsync(to, subject, htmlBody string) {
	go func() {
		if err := m.SendEmail(to, subject, htmlBody); err != nil {
			log.Printf("Failed to send email to %s: %v", to, err)
		}
	}()
}

// RenderOrganisationInfoHTML renders a submitted organisationInfo payload as
// nested HTML lists for the admin review email. Keys are sorted so the
// output is stable.
func RenderOrganisationInfoHTML(organisationInfo map[string]interface{}) string {
	var b strings.Builder
	renderMap(&b, organisationInfo)
	return b.String()
}

func renderMap(b *strings.Builder, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b.WriteString("<ul>")
	for _, key := range keys {
		b.WriteString("<li><strong>")
		b.WriteString(html.EscapeString(key))
		b.WriteString(":</strong> ")
		renderValue(b, m[key])
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

func renderValue(b *strings.Builder, value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		renderMap(b, v)
	case []interface{}:
		b.WriteString("<ul>")
		for _, item := range v {
			b.WriteString("<li>")
			renderValue(b, item)
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	case nil:
		b.WriteString("-")
	default:
		b.WriteString(html.EscapeString(fmt.Sprintf("%v", v)))
	}
}
