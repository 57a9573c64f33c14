package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber builds the public order identifier:
// ORD-<YYYYMMDD>-<8 random hex chars, uppercased>.
func GenerateOrderNumber() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), hex)
}
