package email

// Config holds email dispatch configuration. The Postmark tokens are
// optional so development environments can run on the dev sender;
// SenderEmail establishes the from-identity for all outbound mail and
// SupportEmail receives replies.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"login@manofwisdom.co"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@manofwisdom.co"`
}
