package email

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
)

type recordingSender struct {
	mu   sync.Mutex
	to   []string
	html []string
	err  error
}

func (s *recordingSender) Send(to, subject, html, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.html = append(s.html, html)
	return s.err
}

type countingObserver struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (o *countingObserver) MailSent(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failed++
		return
	}
	o.ok++
}

func TestRenderWelcomeEscapesHTML(t *testing.T) {
	html, text, err := RenderWelcome(
		repository.User{Name: "<b>Ana</b>"},
		repository.Workspace{Name: "My Workspace", InviteCode: "ABC123"},
		"https://app.example.com",
	)
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, text, "<b>Ana</b>")
	assert.Contains(t, text, "ABC123")
	assert.Contains(t, html, `href="https://app.example.com"`)
}

func TestWelcomeNotifierSends(t *testing.T) {
	s := &recordingSender{}
	obs := &countingObserver{}
	n := &WelcomeNotifier{Sender: s, Observer: obs}

	n.UserProvisioned(context.Background(),
		repository.User{ID: "u1", Email: "ana@example.com", Name: "Ana"},
		repository.Workspace{Name: "My Workspace", InviteCode: "XYZ"},
	)
	n.Wait()

	assert.Equal(t, []string{"ana@example.com"}, s.to)
	assert.Equal(t, 1, obs.ok)
}

func TestWelcomeNotifierSwallowsErrors(t *testing.T) {
	s := &recordingSender{err: errors.New("smtp down")}
	obs := &countingObserver{}
	n := &WelcomeNotifier{Sender: s, Observer: obs}

	n.UserProvisioned(context.Background(), repository.User{ID: "u1", Email: "a@x.com"}, repository.Workspace{})
	n.Wait()
	assert.Equal(t, 1, obs.failed)
}

func TestWelcomeNotifierWithoutSender(t *testing.T) {
	n := &WelcomeNotifier{}
	n.UserProvisioned(context.Background(), repository.User{Email: "a@x.com"}, repository.Workspace{})
	n.Wait()
}

func TestSMTPSenderMessage(t *testing.T) {
	s := &SMTPSender{Host: "smtp.example.com", Port: 465, From: "noreply@example.com", TLSMode: "ssl"}
	m := s.message("a@x.com", "Hi", "<p>hi</p>", "hi")
	assert.Equal(t, []string{"a@x.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, m.GetHeader("Subject"))
	assert.True(t, s.dialer().SSL)
}

func TestSMTPSenderDialerTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, (&SMTPSender{Host: "smtp.example.com"}).dialer().Timeout)
	assert.Equal(t, 2*time.Second, (&SMTPSender{Host: "smtp.example.com", Timeout: 2 * time.Second}).dialer().Timeout)
}

func TestSMTPSenderGivesUpOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	// Acepta la conexión y nunca envía el saludo SMTP.
	go func() {
		var held []net.Conn
		defer func() {
			for _, c := range held {
				c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			held = append(held, c)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	s := &SMTPSender{Host: "127.0.0.1", Port: port, From: "noreply@example.com", TLSMode: "none", Timeout: 200 * time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- s.Send("a@x.com", "Hi", "", "hi") }()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("send did not honour the dialer timeout")
	}
}
