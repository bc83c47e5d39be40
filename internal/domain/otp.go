package domain

// OTP flows. Each flow keeps its own namespace per email: issuing a code for
// one flow never touches the other's record.
const (
	FlowEmailVerification = "email_verification"
	FlowPasswordReset     = "password_reset"
)

// OTPRecord is one live code for a (flow, email) pair.
// PK: email, SK: flow. A new issue overwrites the prior record outright.
// ExpiresAt is a DynamoDB TTL attribute; expiry is still enforced in code
// against CreatedAt, so nothing depends on store-side garbage collection.
type OTPRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Flow      string `json:"flow" dynamodbav:"flow"`
	Code      int    `json:"code" dynamodbav:"code"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"` // Unix milliseconds
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
