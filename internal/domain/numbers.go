package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func randomSuffix(length int) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:length])
}

// GenerateShipmentNumber produces a human-readable shipment reference,
// e.g. SHP-20260831-4F7A2C
func GenerateShipmentNumber() string {
	return fmt.Sprintf("SHP-%s-%s", time.Now().UTC().Format("20060102"), randomSuffix(6))
}

// GenerateTrackingNumber produces the carrier-facing tracking reference
func GenerateTrackingNumber() string {
	return fmt.Sprintf("TRK-%s-%s", time.Now().UTC().Format("20060102150405"), randomSuffix(8))
}

// GenerateBatchNumber produces a batch lot reference, e.g. BAT-20260831-9D1E
func GenerateBatchNumber() string {
	return fmt.Sprintf("BAT-%s-%s", time.Now().UTC().Format("20060102"), randomSuffix(4))
}

// GenerateSaleNumber produces a sale receipt reference
func GenerateSaleNumber() string {
	return fmt.Sprintf("SAL-%s-%s", time.Now().UTC().Format("20060102"), randomSuffix(6))
}
