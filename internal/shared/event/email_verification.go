package event

const EmailVerificationDestination string = "auth.email.verification"
const EmailVerificationConsumerNotification string = "auth_email_verification_notification"

type EmailVerificationMessage struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id,string"`
	Email   string `json:"email"`
	Link    string `json:"link"`
}
