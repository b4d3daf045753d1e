package bot

import (
	"strconv"

	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/service"
)

// Callback namespaces. Button data is "<namespace>|<payload>" except for
// the bare cancel button.
const (
	nsGuidedCategory = "cat"
	nsGuidedPayment  = "pay"
	nsQuickCategory  = "qcat"
	nsQuickPayment   = "qpay"
	nsRuleKind       = "rkind"
	nsRuleCategory   = "rcat"
	nsRulePayment    = "rpay"
	nsRuleOff        = "roff"

	callbackCancel = "cancel"
)

func cancelRow() []service.Button {
	return []service.Button{{Label: "❌ Cancelar", Data: callbackCancel}}
}

// categoryKeyboard lays the catalog out two buttons per row, in seed
// order, with an optional trailing cancel row. The payload is the full
// display label since that is what the ledger stores.
func categoryKeyboard(categories []model.Category, namespace string, withCancel bool) [][]service.Button {
	var rows [][]service.Button
	var row []service.Button

	for _, cat := range categories {
		label := cat.Label()
		row = append(row, service.Button{Label: label, Data: namespace + "|" + label})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if withCancel {
		rows = append(rows, cancelRow())
	}
	return rows
}

// paymentKeyboard lays method buttons out two per row; the catch-all
// "No especificado" always gets the final row under a skip label.
func paymentKeyboard(namespace string, methods []string, skipLabel string) [][]service.Button {
	var rows [][]service.Button
	var row []service.Button

	for _, method := range methods {
		if method == model.PaymentUnspecified {
			continue
		}
		row = append(row, service.Button{Label: paymentLabel(method), Data: namespace + "|" + method})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []service.Button{{Label: skipLabel, Data: namespace + "|" + model.PaymentUnspecified}})
	return rows
}

func paymentLabel(method string) string {
	switch method {
	case model.PaymentCash:
		return "💵 Efectivo"
	case model.PaymentYape:
		return "💳 Yape"
	case model.PaymentBCP:
		return "🏦 BCP"
	case model.PaymentCard:
		return "💳 Tarjeta"
	case model.PaymentPlin:
		return "📲 Plin"
	case model.PaymentTransfer:
		return "🔄 Transfer."
	default:
		return method
	}
}

func kindKeyboard() [][]service.Button {
	return [][]service.Button{
		{
			{Label: "💸 Gasto", Data: nsRuleKind + "|gasto"},
			{Label: "💰 Ingreso", Data: nsRuleKind + "|ingreso"},
		},
		cancelRow(),
	}
}

// rulesKeyboard offers one delete button per active rule.
func rulesKeyboard(rules []model.RecurringRule) [][]service.Button {
	rows := make([][]service.Button, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []service.Button{{
			Label: "🗑️ " + rule.Category + " → " + amount(rule.Amount),
			Data:  nsRuleOff + "|" + strconv.FormatInt(rule.ID, 10),
		}})
	}
	return rows
}
