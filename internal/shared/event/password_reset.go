package event

const PasswordResetDestination string = "auth.email.password_reset"
const PasswordResetConsumerNotification string = "auth_email_password_reset_notification"

type PasswordResetMessage struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id,string"`
	Email   string `json:"email"`
	Link    string `json:"link"`
}
