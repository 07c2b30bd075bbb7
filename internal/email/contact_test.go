package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactValidateEmptyName(t *testing.T) {
	errs := ContactMessage{Name: "  ", Email: "a@b.co", Message: "hi"}.Normalize().Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
	assert.Contains(t, errs[0].Message, "name")
}

func TestContactValidate(t *testing.T) {
	tests := []struct {
		name   string
		msg    ContactMessage
		fields []string
	}{
		{"valid", ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hello"}, nil},
		{"bad email", ContactMessage{Name: "Ada", Email: "not-an-email", Message: "Hello"}, []string{"email"}},
		{"all missing", ContactMessage{}, []string{"name", "email", "message"}},
		{"multiline name", ContactMessage{Name: "Mallory\r\nBcc: x@evil.example", Email: "m@example.com", Message: "Hello"}, []string{"name"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields []string
			for _, fe := range tt.msg.Validate() {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestContactRenderEscapesInput(t *testing.T) {
	r := NewContactRenderer("Dev", "owner@example.com")
	r.Now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC) }

	msg, err := r.Render(ContactMessage{Name: "<b>Eve</b>", Email: "eve@example.com", Message: "<script>alert(1)</script>"})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "eve@example.com", msg.ReplyTo)
	assert.Equal(t, "New Contact Form Submission from <b>Eve</b>", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Eve&lt;/b&gt;")
	assert.Contains(t, msg.HTML, "2025")
	assert.Equal(t, "Name: <b>Eve</b>\nEmail: eve@example.com\n\nMessage:\n<script>alert(1)</script>", msg.Text)
}
