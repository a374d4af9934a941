package validator

import (
	"errors"
	"strconv"
	"strings"

	"storefront/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// quantity が無い
	ErrMissingQuantity = errors.New("missing quantity")

	// quantity が数値でない
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// 追加フォーム（variant_id, quantity）を検証。quantity 省略時は 1。
func ValidateAddToCart(variantID string, quantity string) (usecase.AddToCartInput, error) {
	id, err := parsePositiveID(variantID)
	if err != nil {
		return usecase.AddToCartInput{}, err
	}

	qty := int64(1)
	if q := strings.TrimSpace(quantity); q != "" {
		qty, err = strconv.ParseInt(q, 10, 64)
		if err != nil || qty < 1 {
			return usecase.AddToCartInput{}, ErrInvalidQuantity
		}
	}

	return usecase.AddToCartInput{VariantID: id, Quantity: qty}, nil
}

// 数量変更の quantity を検証。0以下は削除として usecase に渡す。
func ValidateSetQuantity(quantity string) (int64, error) {
	q := strings.TrimSpace(quantity)
	if q == "" {
		return 0, ErrMissingQuantity
	}
	qty, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0, ErrInvalidQuantity
	}
	return qty, nil
}

// パスの :id を検証
func ValidateItemID(raw string) (int64, error) {
	return parsePositiveID(raw)
}

func parsePositiveID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidInput
	}
	return id, nil
}
