package dummymail

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/qisedu/udahili/core"
)

// Service logs messages instead of delivering them and records every send,
// for local development and tests.
type Service struct {
	mu               sync.Mutex
	defaultFromEmail string
	subjPrefix       string
	quiet            bool

	// Err, when set, makes every SendMessage fail with it.
	Err error
	// SentMessages records successfully "delivered" messages in order.
	SentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService(conf *core.Config) *Service {
	return &Service{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		quiet:            conf.TestMode,
	}
}

func (svc *Service) SendMessage(msg *core.EmailMessage) (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.Err != nil {
		return "", svc.Err
	}
	if err := msg.Render(); err != nil {
		return "", err
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return "", nil
	}

	svc.SentMessages = append(svc.SentMessages, *msg)
	id := fmt.Sprintf("dummy-%d", len(svc.SentMessages))
	if !svc.quiet {
		svc.print(msg)
	}
	return id, nil
}

// Reset clears recorded messages and any forced error.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.SentMessages = nil
	svc.Err = nil
}

func (svc *Service) print(msg *core.EmailMessage) {
	body := &strings.Builder{}
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", svc.joinAddresses(msg.To))
	_, _ = fmt.Fprintf(body, "\r\n%s\r\n", msg.TextContent)
	log.Println(body.String())
}

func (svc *Service) joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
