// Package authsdk is the Go client for the Meridian authentication service.
//
// It wraps the unauthenticated HTTP surface used by sign-in, signup,
// password reset, and email verification. Errors come back as typed values:
// *APIError for standard failures and *MFARequiredError when a login needs a
// second factor.
//
//	client := authsdk.NewSDKClient("https://auth.example.com")
//	tokens, err := client.Login(ctx, "ada@example.com", "hunter22hunter22")
//	var mfa *authsdk.MFARequiredError
//	if errors.As(err, &mfa) {
//		tokens, err = client.VerifyMFA(ctx, mfa.UserID, "123456", false)
//	}
package authsdk
