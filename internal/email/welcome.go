package email

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"sync"
	"text/template"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

const welcomeSubject = "Welcome to TaskHub"

var (
	welcomeText = template.Must(template.New("welcome.txt").Parse(
		`Hi {{.Name}},

Your account is ready. We created the workspace "{{.Workspace}}" for you.

Invite teammates with this code: {{.InviteCode}}
{{if .AppURL}}
Open TaskHub: {{.AppURL}}
{{end}}`))

	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(
		`<p>Hi {{.Name}},</p>
<p>Your account is ready. We created the workspace <strong>{{.Workspace}}</strong> for you.</p>
<p>Invite teammates with this code: <code>{{.InviteCode}}</code></p>
{{if .AppURL}}<p><a href="{{.AppURL}}">Open TaskHub</a></p>{{end}}`))
)

type welcomeVars struct {
	Name       string
	Workspace  string
	InviteCode string
	AppURL     string
}

// RenderWelcome arma el cuerpo html y texto del mail de bienvenida.
func RenderWelcome(u repository.User, ws repository.Workspace, appURL string) (html, text string, err error) {
	vars := welcomeVars{Name: u.Name, Workspace: ws.Name, InviteCode: ws.InviteCode, AppURL: appURL}
	var hb, tb bytes.Buffer
	if err := welcomeHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	if err := welcomeText.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

// SendObserver recibe el resultado de cada envío (ver metrics.MailSent).
type SendObserver interface {
	MailSent(template string, err error)
}

// WelcomeNotifier envía el mail de bienvenida después de un
// aprovisionamiento. El envío corre en background y nunca afecta el flujo.
type WelcomeNotifier struct {
	Sender   Sender
	AppURL   string
	Observer SendObserver

	wg sync.WaitGroup
}

func (n *WelcomeNotifier) UserProvisioned(ctx context.Context, u repository.User, ws repository.Workspace) {
	log := logger.From(ctx).With(logger.Component("email.welcome"), logger.UserID(u.ID))
	if n.Sender == nil || u.Email == "" {
		return
	}

	html, text, err := RenderWelcome(u, ws, n.AppURL)
	if err != nil {
		log.Error("welcome render failed", logger.Err(err))
		return
	}

	// El Sender acota su propia duración (SMTPSender.Timeout).
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		err := n.Sender.Send(u.Email, welcomeSubject, html, text)
		if n.Observer != nil {
			n.Observer.MailSent("welcome", err)
		}
		if err != nil {
			log.Warn("welcome email not sent", logger.Err(err))
		}
	}()
}

// Wait bloquea hasta que terminen los envíos en curso. Se llama en el
// shutdown y en tests.
func (n *WelcomeNotifier) Wait() { n.wg.Wait() }
