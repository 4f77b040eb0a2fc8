package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateInvoiceNo generates a unique billing invoice number
func GenerateInvoiceNo() string {
	return "INV-" + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateMedicineCode generates a unique medicine catalog code
func GenerateMedicineCode() string {
	return "MED-" + strings.ToUpper(uuid.New().String()[:8])
}
