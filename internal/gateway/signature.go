package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/razorpay/razorpay-go/utils"
)

// Signer checks the provider's payment signature:
// hex(HMAC-SHA256(key secret, orderID + "|" + paymentID)).
type Signer struct {
	secret string
}

func NewSigner(keySecret string) *Signer {
	return &Signer{secret: keySecret}
}

// Sign produces the signature the provider would send with a
// completed payment.
func (s *Signer) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify delegates to the SDK.  Empty inputs never verify.
func (s *Signer) Verify(orderID, paymentID, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, s.secret)
}
