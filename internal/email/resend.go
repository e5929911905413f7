package email

import (
	"fmt"

	"github.com/resend/resend-go/v3"
)

// ResendEmailService implements EmailService using the Resend API.
type ResendEmailService struct {
	client      *resend.Client
	fromAddress string
}

// NewResendEmailService creates a new Resend email service.
// fromAddress must be a sender address verified in Resend.
func NewResendEmailService(apiKey, fromAddress string) *ResendEmailService {
	return &ResendEmailService{
		client:      resend.NewClient(apiKey),
		fromAddress: fromAddress,
	}
}

// Send sends an email using the specified template via Resend.
func (r *ResendEmailService) Send(to, templateName string, data any) error {
	subject, html := r.renderTemplate(templateName, data)

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	return nil
}

func (r *ResendEmailService) renderTemplate(templateName string, data any) (subject, html string) {
	switch templateName {
	case TemplateWelcome:
		d := data.(WelcomeData)
		subject = "Welcome to NoteMate!"
		html = renderWelcomeHTML(d)
	case TemplateExportReady:
		d := data.(ExportReadyData)
		subject = "Your NoteMate export is ready"
		html = renderExportReadyHTML(d)
	default:
		subject = "Message from NoteMate"
		html = fmt.Sprintf("<p>%+v</p>", data)
	}
	return
}

func renderWelcomeHTML(data WelcomeData) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to NoteMate!</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #FBEB95; padding: 30px; border-radius: 10px 10px 0 0;">
        <h1 style="color: #333; margin: 0; font-size: 24px;">NoteMate</h1>
    </div>
    <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Welcome, %s!</h2>
        <p>Thank you for joining NoteMate. Your notes are waiting.</p>
        <ul style="color: #555;">
            <li>Jot down notes and pick a color for each</li>
            <li>Your notes stay cached on your device and sync when you're online</li>
            <li>Export everything as JSON whenever you like</li>
        </ul>
        <p style="color: #666; font-size: 14px;">If you have any questions, feel free to reach out to our support team.</p>
        <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated message from NoteMate. Please do not reply to this email.</p>
    </div>
</body>
</html>`, data.Name)
}

func renderExportReadyHTML(data ExportReadyData) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your NoteMate export is ready</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #AED8FE; padding: 30px; border-radius: 10px 10px 0 0;">
        <h1 style="color: #333; margin: 0; font-size: 24px;">NoteMate</h1>
    </div>
    <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Hi %s,</h2>
        <p>Your export of <strong>%d</strong> notes finished and is stored at <code>%s</code>.</p>
        <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated message from NoteMate. Please do not reply to this email.</p>
    </div>
</body>
</html>`, data.Name, data.NoteCount, data.Key)
}
