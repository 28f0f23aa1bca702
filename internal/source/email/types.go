package email

// SMTPConfig holds the SMTP server settings for sending the report.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string

	// TLS selects implicit TLS when true, STARTTLS when false.
	TLS bool
}
