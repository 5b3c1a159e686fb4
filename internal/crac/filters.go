package crac

import (
	"strings"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// CnecNameOperatorFilter builds the operator-specific CNEC exclusion of
// spec §4.3.7: it drops FlowCnecs whose name contains namePattern and whose
// operator contains operatorID (e.g. three-winding-transformer legs for a
// given TSO). It runs only at serialization time (models.Crac.Serialize)
// and never mutates the in-memory document. Kept behind this constructor
// and a config switch rather than baked into models.Crac: the exclusion is
// an operator-specific convention, not a property of the CRAC document.
func CnecNameOperatorFilter(namePattern, operatorID string) models.OperatorFilter {
	return func(name, operator string) bool {
		return strings.Contains(name, namePattern) && strings.Contains(operator, operatorID)
	}
}
