package event

const LoginOTPDestination string = "auth.email.login_otp"
const LoginOTPConsumerNotification string = "auth_email_login_otp_notification"

type LoginOTPMessage struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id,string"`
	Email   string `json:"email"`
	OTP     string `json:"otp"`
	TTLMin  int    `json:"ttl_minutes"`
}
