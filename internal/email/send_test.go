package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeEmailSender struct {
	sendCalls  int32
	delay      time.Duration
	err        error
	recipients chan string
}

func newFakeEmailSender(delay time.Duration) *fakeEmailSender {
	return &fakeEmailSender{delay: delay, recipients: make(chan string, 4)}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	return f.SendFrom(ctx, recipient, subject, body, "")
}

func (f *fakeEmailSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	atomic.AddInt32(&f.sendCalls, 1)
	select {
	case f.recipients <- recipient:
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return f.err
	}
}

func waitForResult(t *testing.T, ch <-chan error) error {
	t.Helper()

	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for send result")
		return nil
	}
}

func TestSendAsync_OutlivesRequestContext(t *testing.T) {
	sender := newFakeEmailSender(50 * time.Millisecond)
	done := make(chan error, 1)

	ctx, cancel := context.WithCancel(context.Background())
	SendAsync(ctx, sender, "member@test.com", KindComplianceReminder, Message{Subject: "Subject", Body: "Body"}, done)
	cancel()

	if err := waitForResult(t, done); err != nil {
		t.Fatalf("expected send to complete after request cancel, got %v", err)
	}
	if got := <-sender.recipients; got != "member@test.com" {
		t.Fatalf("recipient = %q", got)
	}
}

func TestSendAsync_SkipsIncompleteMessages(t *testing.T) {
	sender := newFakeEmailSender(0)
	done := make(chan error, 1)

	SendAsync(context.Background(), sender, "  ", KindComplianceReminder, Message{Subject: "S", Body: "B"}, done)
	if err := waitForResult(t, done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	SendAsync(context.Background(), sender, "member@test.com", KindComplianceReminder, Message{Subject: "S"}, done)
	if err := waitForResult(t, done); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := atomic.LoadInt32(&sender.sendCalls); calls != 0 {
		t.Fatalf("expected no send calls, got %d", calls)
	}
}

func TestDeliver_ReturnsSenderError(t *testing.T) {
	sender := newFakeEmailSender(0)
	sender.err = errors.New("throttled")

	err := Deliver(context.Background(), sender, "coach@test.com", KindComplianceDigest, Message{Subject: "S", Body: "B"})
	if err == nil || err.Error() != "throttled" {
		t.Fatalf("Deliver() error = %v, want throttled", err)
	}
}

func TestNewEmailContext_DetachesAndTimesOut(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	ctx, stop := newEmailContext(parent, 20*time.Millisecond)
	defer stop()
	if ctx.Err() != nil {
		t.Fatalf("detached context should not inherit cancellation, got %v", ctx.Err())
	}
	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", ctx.Err())
	}
}

func TestBuildComplianceReminder(t *testing.T) {
	msg := BuildComplianceReminder(ReminderDetails{
		ClubName:     "St. Jude's GAA",
		MemberName:   "ciara walsh",
		MissingItems: []string{"Date of birth is required", "Gender is required"},
	})
	if msg.Subject != "Membership details needed - St. Jude's GAA" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Hi Ciara Walsh,") {
		t.Fatalf("body should greet the member by name: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "  - Gender is required") {
		t.Fatalf("body missing item list: %q", msg.Body)
	}

	guardian := BuildComplianceReminder(ReminderDetails{MemberName: "ciara walsh", ForGuardian: true})
	if !strings.Contains(guardian.Body, "Ciara Walsh's membership record at your club") {
		t.Fatalf("guardian body = %q", guardian.Body)
	}
}

func TestBuildComplianceReminder_KeepsInnerCapitals(t *testing.T) {
	var wg sync.WaitGroup
	bodies := make([]string, 16)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bodies[i] = BuildComplianceReminder(ReminderDetails{MemberName: "cormac McCann"}).Body
		}(i)
	}
	wg.Wait()

	for _, body := range bodies {
		if !strings.HasPrefix(body, "Hi Cormac McCann,") {
			t.Fatalf("body = %q", body)
		}
	}
}

func TestBuildComplianceDigest(t *testing.T) {
	msg := BuildComplianceDigest(DigestDetails{
		ClubName:        "Clontarf RFC",
		Date:            "2026-10-19",
		TotalMembers:    40,
		CompliantCount:  30,
		DataHealthScore: 75,
		ExportLocation:  "compliance/clontarf-rfc/2026-10-19.csv",
	})
	if msg.Subject != "Compliance digest - Clontarf RFC - 75%" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Full export: compliance/clontarf-rfc/2026-10-19.csv") {
		t.Fatalf("body = %q", msg.Body)
	}
}
