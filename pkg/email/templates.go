package email

import "fmt"

// ReviewRequestData contains the data needed for review request emails.
type ReviewRequestData struct {
	PatientName string
	Email       string
	ClinicName  string
	ReviewURL   string
}

// BuildReviewRequestEmail creates the email asking a patient to rate their
// recent visit. The review link carries the review request ID.
func BuildReviewRequestEmail(data ReviewRequestData) Message {
	clinicName := data.ClinicName
	if clinicName == "" {
		clinicName = "your clinic"
	}

	patientName := data.PatientName
	if patientName == "" {
		patientName = "there"
	}

	subject := fmt.Sprintf("How was your visit to %s?", clinicName)

	textBody := fmt.Sprintf(`Hi %s,

Thank you for your recent visit to %s.

We'd love to hear how it went. It only takes a minute:
%s

Your feedback helps us improve the care we provide.

Thanks,
%s`,
		patientName, clinicName, data.ReviewURL, clinicName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Thank you for your recent visit to %s.</p>
    <p>We'd love to hear how it went. It only takes a minute:</p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Rate Your Visit</a>
    </p>
    <p>Your feedback helps us improve the care we provide.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>%s</p>
</body>
</html>`,
		patientName, clinicName, data.ReviewURL, clinicName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// LowBalanceData contains the data for the low push credit warning email sent
// to clinic staff.
type LowBalanceData struct {
	Email      string
	ClinicName string
	Balance    int
	TopUpURL   string
}

// BuildLowBalanceEmail creates a warning email when a clinic's push credit
// balance drops below the alert threshold.
func BuildLowBalanceEmail(data LowBalanceData) Message {
	clinicName := data.ClinicName
	if clinicName == "" {
		clinicName = "Your clinic"
	}

	subject := fmt.Sprintf("%s is low on notification credits", clinicName)

	// The top-up link block is only rendered when a URL is configured.
	textTopUp := ""
	htmlTopUp := ""
	if data.TopUpURL != "" {
		textTopUp = fmt.Sprintf("\n\nTop up here:\n%s", data.TopUpURL)
		htmlTopUp = fmt.Sprintf(`
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #16a34a; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Top Up Credits</a>
    </p>`, data.TopUpURL)
	}

	textBody := fmt.Sprintf(`Hi,

%s has %d notification credits remaining.

Follow-up reminders will stop once the balance reaches zero.%s

Thanks,
The ClinicPulse Team`,
		clinicName, data.Balance, textTopUp)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #d97706;">Low notification balance</h2>
    <p>%s has <strong>%d</strong> notification credits remaining.</p>
    <p>Follow-up reminders will stop once the balance reaches zero.</p>%s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The ClinicPulse Team</p>
</body>
</html>`,
		clinicName, data.Balance, htmlTopUp)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
