package email

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ContactMessage is a visitor submission from the contact form.
type ContactMessage struct {
	Name    string `json:"name" validate:"required,max=200,singleline"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Message string `json:"message" validate:"required,max=10000"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

// Normalize trims surrounding whitespace from every field.
func (m ContactMessage) Normalize() ContactMessage {
	return ContactMessage{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: strings.TrimSpace(m.Message),
	}
}

// Validate returns one entry per offending field, keyed by its JSON name.
func (m ContactMessage) Validate() []FieldError {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "singleline":
			msg = fmt.Sprintf("%s must be a single line", fe.Field())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

var contactTmpl = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>New Contact Form Submission</title>
</head>
<body style="margin:0;padding:0;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;background-color:#020617;color:#e2e8f0;">
  <table role="presentation" style="width:100%;border-collapse:collapse;background-color:#020617;">
    <tr>
      <td style="padding:40px 20px;">
        <table role="presentation" style="max-width:600px;margin:0 auto;background-color:#0f172a;border-radius:16px;border:1px solid #1e293b;">
          <tr>
            <td style="background:#0284c7;padding:32px 40px;text-align:center;">
              <h1 style="margin:0;color:#ffffff;font-size:28px;">{{.Site}}</h1>
              <p style="margin:8px 0 0 0;color:#e0f2fe;font-size:14px;">New Contact Form Submission</p>
            </td>
          </tr>
          <tr>
            <td style="padding:40px;">
              <p style="margin:0;color:#64748b;font-size:12px;text-transform:uppercase;">Received</p>
              <p style="margin:8px 0 32px 0;color:#38bdf8;font-size:16px;">{{.Received}}</p>
              <p style="margin:0 0 8px 0;color:#64748b;font-size:12px;text-transform:uppercase;">From</p>
              <p style="margin:0;color:#ffffff;font-size:18px;font-weight:600;">{{.Name}}</p>
              <p style="margin:4px 0 32px 0;color:#38bdf8;font-size:14px;">{{.Email}}</p>
              <div style="background-color:#1e293b;border-left:4px solid #0ea5e9;padding:24px;border-radius:8px;">
                <p style="margin:0 0 12px 0;color:#64748b;font-size:12px;text-transform:uppercase;">Message</p>
                <div style="color:#e2e8f0;font-size:15px;line-height:1.7;white-space:pre-wrap;">{{.Message}}</div>
              </div>
              <p style="margin:32px 0 0 0;color:#64748b;font-size:12px;text-align:center;">This email was sent from your portfolio contact form</p>
            </td>
          </tr>
        </table>
        <p style="margin:24px 0 0 0;color:#475569;font-size:12px;text-align:center;">&copy; {{.Year}} {{.Site}}</p>
      </td>
    </tr>
  </table>
</body>
</html>`))

// ContactRenderer turns submissions into relay messages.
type ContactRenderer struct {
	Site     string
	To       string
	Location *time.Location
	Now      func() time.Time
}

func NewContactRenderer(site, to string) ContactRenderer {
	loc, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		loc = time.UTC
	}
	if site == "" {
		site = "Portfolio"
	}
	return ContactRenderer{Site: site, To: to, Location: loc, Now: time.Now}
}

// Render builds the message sent to the site owner. All user input is
// escaped in the HTML part; replies go straight to the visitor.
func (r ContactRenderer) Render(m ContactMessage) (Message, error) {
	now := r.Now().In(r.Location)
	var buf bytes.Buffer
	err := contactTmpl.Execute(&buf, map[string]any{
		"Site":     r.Site,
		"Received": now.Format("2 January 2006 15:04"),
		"Name":     m.Name,
		"Email":    m.Email,
		"Message":  m.Message,
		"Year":     now.Year(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render contact template: %w", err)
	}
	return Message{
		To:      r.To,
		ReplyTo: m.Email,
		Subject: "New Contact Form Submission from " + m.Name,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", m.Name, m.Email, m.Message),
	}, nil
}
