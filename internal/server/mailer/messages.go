package mailer

import "fmt"

// Verification asks the recipient to confirm a new account's email.
func Verification(email, verificationURL string) Message {
	return Message{
		To:      email,
		Subject: "Verify your email - Filehaven",
		Body: fmt.Sprintf(
			"Someone is creating a Filehaven account with the email %s.\r\n\r\n"+
				"If that was you, open this link to verify your email:\r\n%s\r\n\r\n"+
				"If not, you can safely ignore this message.\r\n",
			email, verificationURL),
	}
}

// EmailTaken tells an existing user that someone tried to sign up with
// their email. Sent instead of a verification mail so the API response
// never reveals whether an email is registered.
func EmailTaken(name, email string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Your email is already registered - Filehaven",
		Body: fmt.Sprintf(
			"Someone tried to create a Filehaven account with the email %s, "+
				"but an account with this email already exists.\r\n\r\n"+
				"If that was you, you can sign in to your existing account or reset "+
				"its password instead.\r\n",
			email),
	}
}

// PasswordReset carries the reset link for a known account.
func PasswordReset(name, email, resetURL string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Reset your password - Filehaven",
		Body: fmt.Sprintf(
			"A password reset was requested for your Filehaven account.\r\n\r\n"+
				"Open this link to choose a new password:\r\n%s\r\n\r\n"+
				"If you didn't request this, you can safely ignore this message.\r\n",
			resetURL),
	}
}

// PasswordResetFailed is sent when a reset was requested for an email with
// no account, again to keep the API response enumeration-safe.
func PasswordResetFailed(email string) Message {
	return Message{
		To:      email,
		Subject: "Password reset failed - Filehaven",
		Body: fmt.Sprintf(
			"A password reset was requested for %s, but no Filehaven account "+
				"uses this email.\r\n\r\n"+
				"If that was you, try another email address or create a new "+
				"account.\r\n",
			email),
	}
}
