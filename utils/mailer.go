package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"askline/config"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>パスワード再設定コード</h2>
    <p>以下の確認コードを入力してください。</p>
    <p style="font-size: 24px; font-weight: bold; color: #06c755; text-align: center;">{{.OTP}}</p>
    <p>このコードは15分で無効になります。心当たりがない場合はこのメールを破棄してください。</p>
</body>
</html>`))

// SendMail delivers one HTML mail through the configured SMTP server
func SendMail(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", config.AppConfig.FromName, config.AppConfig.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// SendPasswordResetOTPEmail mails the password reset code
func SendPasswordResetOTPEmail(to, otp string) error {
	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, struct{ OTP string }{OTP: otp}); err != nil {
		return fmt.Errorf("error executing template: %w", err)
	}
	return SendMail(to, "パスワード再設定コード", body.String())
}
