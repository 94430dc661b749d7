package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
	"github.com/styloinvest/backend/internal/config"
	"github.com/styloinvest/backend/internal/models"
)

// QRService renders an account's referral link as a QR image for the
// referrals tab.
type QRService struct {
	cfg *config.LedgerConfig
}

func NewQRService(cfg *config.LedgerConfig) *QRService {
	return &QRService{cfg: cfg}
}

// ReferralQR returns the referral link and a base64 PNG of its QR code.
func (s *QRService) ReferralQR(account *models.Account) (string, string, error) {
	if account.ReferralCode == "" {
		return "", "", fmt.Errorf("%w: account has no referral code", models.ErrInvalidState)
	}

	link := fmt.Sprintf("%s/register?ref=%s", s.cfg.BaseURL, account.ReferralCode)

	qr, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	return link, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
