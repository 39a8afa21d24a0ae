// internal/integrity/integrity.go

// Package integrity holds the structural invariants every accepted write must
// satisfy, whoever issued it.
package integrity

import (
	"errors"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

// Check validates the range, enumeration and required-field tags of a row.
// The first failing field is reported.
func Check(row interface{}) error {
	err := utils.ValidateStruct(row)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Wrap(err, "validate row")
	}

	fe := fieldErrs[0]
	return apperrors.Integrity(classify(fe.Tag()), fe.Field(), "%s failed %s%s", fe.Field(), fe.Tag(), param(fe.Param()))
}

func classify(tag string) apperrors.Violation {
	switch {
	case utils.EnumTags[tag]:
		return apperrors.ViolationInvalidEnum
	case tag == "required":
		return apperrors.ViolationMissingField
	default:
		return apperrors.ViolationOutOfRange
	}
}

func param(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// MaxCents is the largest amount a decimal(12,2) money column can hold.
const MaxCents int64 = 999_999_999_999

// ToCents converts a decimal(…,2) money value to integer cents.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// LineCents is quantity × unit price in cents. Products that do not fit a
// money column are reported as out_of_range instead of wrapping.
func LineCents(quantity int, unitPrice float64) (int64, error) {
	if unitPrice > FromCents(MaxCents) || unitPrice < -FromCents(MaxCents) {
		return 0, outOfRange("unit_price", "unit price %.2f exceeds the money range", unitPrice)
	}
	q, p := absInt64(int64(quantity)), absInt64(ToCents(unitPrice))
	if p != 0 && q > MaxCents/p {
		return 0, outOfRange("subtotal", "%d x %.2f exceeds the money range", quantity, unitPrice)
	}
	return int64(quantity) * ToCents(unitPrice), nil
}

// Subtotal is quantity × unit price, rounded to the cent.
func Subtotal(quantity int, unitPrice float64) (float64, error) {
	cents, err := LineCents(quantity, unitPrice)
	if err != nil {
		return 0, err
	}
	return FromCents(cents), nil
}

// CheckOrderItem enforces subtotal == quantity × unit_price on top of the
// row's own range checks.
func CheckOrderItem(item *models.OrderItem) error {
	if err := Check(item); err != nil {
		return err
	}
	want, err := LineCents(item.Quantity, item.UnitPrice)
	if err != nil {
		return err
	}
	if ToCents(item.Subtotal) != want {
		return apperrors.Integrity(apperrors.ViolationSubtotalMismatch, "subtotal",
			"subtotal %.2f does not equal %d x %.2f", item.Subtotal, item.Quantity, item.UnitPrice)
	}
	return nil
}

// CheckOrderTotal enforces total_amount == Σ subtotal.
func CheckOrderTotal(order *models.Order, items []models.OrderItem) error {
	var sum int64
	for i := range items {
		sum += ToCents(items[i].Subtotal)
		if sum > MaxCents {
			return outOfRange("total_amount", "order total exceeds the money range")
		}
	}
	if ToCents(order.TotalAmount) != sum {
		return apperrors.Integrity(apperrors.ViolationTotalMismatch, "total_amount",
			"total %.2f does not equal item subtotals %.2f", order.TotalAmount, FromCents(sum))
	}
	return nil
}

func outOfRange(field, format string, args ...interface{}) error {
	return apperrors.Integrity(apperrors.ViolationOutOfRange, field, format, args...)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
