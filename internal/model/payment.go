package model

// Payment methods the bot offers as buttons. The ledger stores the payment
// method as free text, so these are display values, not an enum.
const (
	PaymentCash        = "Efectivo"
	PaymentYape        = "Yape"
	PaymentPlin        = "Plin"
	PaymentBCP         = "BCP"
	PaymentTransfer    = "Transferencia"
	PaymentCard        = "Tarjeta"
	PaymentUnspecified = "No especificado"
)

// DefaultPaymentMethod is recorded when a transaction carries no explicit
// payment method.
const DefaultPaymentMethod = PaymentCash

// GuidedPaymentMethods is the full set offered by the step-by-step flows.
var GuidedPaymentMethods = []string{
	PaymentCash,
	PaymentYape,
	PaymentBCP,
	PaymentCard,
	PaymentPlin,
	PaymentTransfer,
	PaymentUnspecified,
}

// QuickPaymentMethods is the shorter set offered after a quick entry.
var QuickPaymentMethods = []string{
	PaymentCash,
	PaymentYape,
	PaymentBCP,
	PaymentCard,
	PaymentUnspecified,
}
