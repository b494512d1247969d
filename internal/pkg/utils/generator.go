package utils

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

// GenerateTransactionID returns TXN followed by 12 uppercase hex characters.
func GenerateTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return constvars.TransactionIDPrefix + strings.ToUpper(hex[:12])
}

// GenerateReceiptNumber returns RCP-yyyyMMdd-XXXXXXXX.
func GenerateReceiptNumber(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf(constvars.ReceiptNumberFormat, now.Format(constvars.CompactDate), strings.ToUpper(hex[:8]))
}

func GenerateBankSlipObjectName(paymentID int64, fileExtension string) string {
	return fmt.Sprintf(constvars.BankSlipObjectFormat, paymentID, uuid.NewString(), fileExtension)
}

// GenerateAccessToken signs a bearer token carrying the caller id and role.
func GenerateAccessToken(userID int64, role, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		constvars.JWTClaimSubject: userID,
		constvars.JWTClaimRole:    role,
		"exp":                     time.Now().Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
