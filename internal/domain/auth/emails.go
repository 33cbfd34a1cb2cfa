package auth

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="max-width: 600px; margin: auto; font-family: Arial, sans-serif; border: 1px solid #ddd; padding: 20px; border-radius: 10px; background-color: #f9f9f9;">
  <h2 style="color: #333; text-align: center;">Password Reset Request</h2>
  <p style="font-size: 16px; color: #555;">Hello <strong>{{.Name}}</strong>,</p>
  <p style="font-size: 16px; color: #555;">You have requested to reset your password. Use the OTP below to proceed:</p>
  <p style="font-size: 24px; font-weight: bold; color: #007bff; text-align: center;">{{.OTP}}</p>
  <p style="font-size: 16px; color: #555;">This OTP is valid for <strong>{{.Minutes}} minutes</strong>. If you did not request this, please ignore this email.</p>
  <p style="font-size: 16px; color: #555;">For security reasons, do not share this OTP with anyone.</p>
</div>`))

var resetTemplate = template.Must(template.New("reset").Parse(`<div style="max-width: 600px; margin: auto; font-family: Arial, sans-serif; border: 1px solid #ddd; padding: 20px; border-radius: 10px; background-color: #f9f9f9;">
  <h2 style="color: #333; text-align: center;">Password Reset Confirmation</h2>
  <p style="font-size: 16px; color: #555;">Hello <strong>{{.Name}}</strong>,</p>
  <p style="font-size: 16px; color: #555;">Your password has been <strong>reset successfully</strong>. You can now log in with your new password.</p>
  <p style="font-size: 16px; color: #555;">If you did not initiate this change, please contact our support team immediately.</p>
</div>`))

func displayName(u *User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return "User"
}

func otpMessage(u *User, otp string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Minutes())
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, map[string]any{
		"Name":    displayName(u),
		"OTP":     otp,
		"Minutes": minutes,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}
	return Message{
		To:      u.Email,
		Subject: "Password Reset OTP",
		Text:    fmt.Sprintf("Your OTP is: %s. This OTP will expire in %d minutes.", otp, minutes),
		HTML:    buf.String(),
	}, nil
}

func resetConfirmationMessage(u *User) (Message, error) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, map[string]any{"Name": displayName(u)}); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{
		To:      u.Email,
		Subject: "Password Reset Successful",
		Text:    "Your password has been reset successfully.",
		HTML:    buf.String(),
	}, nil
}
