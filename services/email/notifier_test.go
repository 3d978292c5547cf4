package emailsvc

import (
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/shule-edu/shule/core"
	"github.com/shule-edu/shule/core/account"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) *Notifier {
	t.Helper()
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Shule",
		WorkDir:          core.Getwd(),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
	}
	core.ParseEmailTemplates(conf, nopLogger{})

	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()

	return NewNotifier(NewConsoleServiceMock(conf))
}

func TestNotifier_SendCredentials(t *testing.T) {
	notifier := setup(t)

	to := mail.Address{Name: "Jane Doe", Address: "jane.doe@shule.local"}
	sent := notifier.SendCredentials(to, "Jane", "jane.doe@shule.local", "TEMP123456", account.RoleInstructor)
	if !sent {
		t.Fatal("SendCredentials() = false; want true")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(SentMessages))
	}
	msg := SentMessages[0]
	if msg.Subject != "Your account is ready" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"Jane", "jane.doe@shule.local", "TEMP123456"} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("TextContent missing %q", want)
		}
	}
	if msg.HTMLContent == "" {
		t.Error("HTMLContent is empty")
	}
}

func TestNotifier_SendWorkAssigned(t *testing.T) {
	notifier := setup(t)

	to := mail.Address{Name: "John Smith", Address: "john.smith@shule.local"}
	dueAt := time.Date(2025, time.October, 15, 18, 0, 0, 0, time.UTC)
	sent := notifier.SendWorkAssigned(to, "John", "ER modeling exercise", "Databases", "Jane Doe", dueAt, "Model the library domain")
	if !sent {
		t.Fatal("SendWorkAssigned() = false; want true")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(SentMessages))
	}
	msg := SentMessages[0]
	if msg.Subject != "New work assigned: ER modeling exercise" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{"John", "ER modeling exercise", "Databases", "Jane Doe", "15 Oct 2025"} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("TextContent missing %q", want)
		}
	}
}

func TestConsoleService_requiresRecipientsAndContent(t *testing.T) {
	setup(t)
	conf := &core.Config{AppName: "Shule", DefaultFromEmail: mail.Address{Address: "noreply@localhost"}}
	svc := NewConsoleServiceMock(conf)

	// no recipients
	if svc.SendMessage(&core.EmailMessage{Subject: "hi", TextContent: "hello"}) {
		t.Error("SendMessage() without recipients = true; want false")
	}
	// no content
	to := []mail.Address{{Address: "jane.doe@shule.local"}}
	if svc.SendMessage(&core.EmailMessage{To: to, Subject: "hi"}) {
		t.Error("SendMessage() without content = true; want false")
	}
}
