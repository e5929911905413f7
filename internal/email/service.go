// Package email sends transactional email, with a capturing mock for tests.
package email

import (
	"log"
	"sync"
)

// Template names.
const (
	TemplateWelcome     = "welcome"
	TemplateExportReady = "export_ready"
)

// WelcomeData is the template data for welcome emails.
type WelcomeData struct {
	Name string
}

// ExportReadyData is the template data for export notification emails.
type ExportReadyData struct {
	Name      string
	NoteCount int
	Key       string
}

// EmailService defines the interface for sending emails.
type EmailService interface {
	// Send sends an email using the specified template.
	Send(to, templateName string, data any) error
}

// SentEmail represents a captured email for testing.
type SentEmail struct {
	To       string
	Template string
	Data     any
}

// MockEmailService is a mock implementation that captures emails for testing.
type MockEmailService struct {
	mu     sync.Mutex
	Emails []SentEmail
}

// NewMockEmailService creates a new mock email service.
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		Emails: make([]SentEmail, 0),
	}
}

// Send captures the email instead of sending it and logs for manual testing.
func (m *MockEmailService) Send(to, templateName string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = append(m.Emails, SentEmail{
		To:       to,
		Template: templateName,
		Data:     data,
	})

	log.Printf("[EMAIL] To: %s | Template: %s", to, templateName)
	switch d := data.(type) {
	case WelcomeData:
		log.Printf("[EMAIL] Welcome %s!", d.Name)
	case ExportReadyData:
		log.Printf("[EMAIL] Export ready for %s: %d notes at %s", d.Name, d.NoteCount, d.Key)
	default:
		log.Printf("[EMAIL] Data: %+v", data)
	}

	return nil
}

// LastEmail returns the most recently sent email.
// Returns zero value if no emails have been sent.
func (m *MockEmailService) LastEmail() SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Emails) == 0 {
		return SentEmail{}
	}
	return m.Emails[len(m.Emails)-1]
}

// Clear removes all captured emails.
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = make([]SentEmail, 0)
}

// Count returns the number of captured emails.
func (m *MockEmailService) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Emails)
}
