package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shandysiswandi/authflow/internal/notification/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateData struct {
	Subject    string
	AppName    string
	Email      string
	Year       string
	Link       string
	OTP        string
	TTLMinutes int
}

var subjects = map[entity.Kind]string{
	entity.KindVerifyEmail:   "Verify Your Email",
	entity.KindLoginOTP:      "Your OTP Code",
	entity.KindResetPassword: "Reset Your Password",
}

// pages holds one parsed set per kind: the shared base layout plus the kind's
// "content" block.
var pages = func() map[entity.Kind]*template.Template {
	base := template.Must(template.New("base.html").Option("missingkey=zero").ParseFS(templateFS, "templates/base.html"))

	out := make(map[entity.Kind]*template.Template, len(subjects))
	for kind := range subjects {
		set := template.Must(base.Clone())
		out[kind] = template.Must(set.ParseFS(templateFS, "templates/"+kind.String()+".html"))
	}
	return out
}()

func renderHTML(kind entity.Kind, data templateData) (string, error) {
	t, ok := pages[kind]
	if !ok {
		return "", fmt.Errorf("no template for %q", kind)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderText builds the plain text alternative.
func renderText(kind entity.Kind, data templateData) string {
	switch kind {
	case entity.KindVerifyEmail:
		return fmt.Sprintf("Welcome to %s!\n\nConfirm your email address by opening this link:\n%s\n\nThe link works once and expires soon.\n",
			data.AppName, data.Link)
	case entity.KindLoginOTP:
		return fmt.Sprintf("Your %s login code is %s\n\nIt expires in %d minutes. Never share it with anyone.\n",
			data.AppName, data.OTP, data.TTLMinutes)
	case entity.KindResetPassword:
		return fmt.Sprintf("We received a request to reset your %s password.\n\nOpen this link to choose a new one:\n%s\n\nIf you did not ask for this, ignore this email.\n",
			data.AppName, data.Link)
	default:
		return ""
	}
}
