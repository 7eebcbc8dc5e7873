package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bhokexpress/internal/domain/model"
)

// ValidationError はユーザーにそのまま見せる失敗理由
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var (
	ErrLocationMissing = &ValidationError{Reason: "Please select your delivery location."}
	ErrCartEmpty       = &ValidationError{Reason: "Your cart is empty."}
	ErrInvalidPhone    = &ValidationError{Reason: "Please enter a valid Nepali delivery phone number."}
	ErrProofMissing    = &ValidationError{Reason: "Please enter transaction details."}
)

// Validator は送信前チェック。I/Oなし、同期、最初の失敗で打ち切る
type Validator struct {
	codCeiling decimal.Decimal
	codErr     *ValidationError
	phoneOK    func(string) bool
}

func NewValidator(codCeiling decimal.Decimal, phoneOK func(string) bool) *Validator {
	return &Validator{
		codCeiling: codCeiling,
		codErr: &ValidationError{
			Reason: fmt.Sprintf("Cannot place orders above NPR %s using COD.", codCeiling.StringFixed(0)),
		},
		phoneOK: phoneOK,
	}
}

// Validate は次の順でチェックする:
// 配達先 → カート空 → 電話番号 → COD上限 → 支払い証跡
func (v *Validator) Validate(d Draft) error {
	if d.Location == nil {
		return ErrLocationMissing
	}
	if d.Cart == nil || d.Cart.IsEmpty() {
		return ErrCartEmpty
	}
	if !v.phoneOK(d.DeliveryPhone) {
		return ErrInvalidPhone
	}

	//CODは小計ベースで上限あり
	if d.PayMethod == model.PaymentMethodCash && d.Quote.Subtotal.GreaterThan(v.codCeiling) {
		return v.codErr
	}

	//手動送金系は証跡必須
	if d.PayMethod == model.PaymentMethodQRPay {
		if strings.TrimSpace(d.TransactionID) == "" || strings.TrimSpace(d.Note) == "" {
			return ErrProofMissing
		}
	}

	return nil
}
