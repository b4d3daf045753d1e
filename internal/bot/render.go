package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmorales/gastosbot/internal/model"
	"github.com/jmorales/gastosbot/internal/money"
	"github.com/jmorales/gastosbot/internal/service"
)

// Fixed replies. Every user-facing string is Spanish and Markdown.
const (
	deniedText       = "⛔ No estás autorizado para usar este bot."
	canceledText     = "❌ Cancelado"
	genericErrorText = "⚠️ Algo salió mal. Intenta de nuevo."

	invalidAmountText  = "❌ Monto inválido. Escribe un número positivo:"
	invalidDayText     = "❌ Día inválido. Escribe un número entre 1 y 28:"
	askDescriptionText = "📝 ¿Descripción? (o escribe *no* para omitir)"
	askDayText         = "📆 ¿Qué día del mes se repite? (1-28):"
	askPaymentText     = "💳 Método de pago:"
	photoPendingText   = "📸 Foto recibida.\n\n💵 Escribe el monto del gasto:"

	nothingToDeleteText = "No hay registros para eliminar."
)

// barWidth is the length of the proportional bars in /resumen.
const barWidth = 8

var divider = strings.Repeat("─", 28)

func amount(v decimal.Decimal) string {
	return "$" + money.Format(v)
}

func kindEmoji(kind model.TransactionKind) string {
	if kind == model.KindIncome {
		return "💰"
	}
	return "💸"
}

func renderStart(firstName string, summary service.MonthSummary, todayTotal decimal.Decimal) string {
	var b strings.Builder

	if firstName != "" {
		fmt.Fprintf(&b, "👋 ¡Hola %s!\n\n", firstName)
	} else {
		b.WriteString("👋 ¡Hola!\n\n")
	}
	b.WriteString("💰 *GastosBot* — Tu control financiero personal\n\n")
	b.WriteString("📊 *Resumen del mes:*\n")
	fmt.Fprintf(&b, "   Ingresos: %s\n", amount(summary.Income))
	fmt.Fprintf(&b, "   Gastos: %s\n", amount(summary.Expenses))
	fmt.Fprintf(&b, "   Balance: %s\n", amount(summary.Balance()))
	fmt.Fprintf(&b, "   Hoy: %s gastados\n\n", amount(todayTotal))
	b.WriteString("⚡ *Registro rápido:*\n")
	b.WriteString("   Escribe el monto directamente: `150`\n")
	b.WriteString("   O con descripción: `150 uber`\n\n")
	b.WriteString("📋 *Comandos:*\n")
	b.WriteString("/gasto — Registrar un gasto\n")
	b.WriteString("/ingreso — Registrar un ingreso\n")
	b.WriteString("/resumen — Ver resumen del mes\n")
	b.WriteString("/hoy — Gastos de hoy\n")
	b.WriteString("/recientes — Últimos 10 movimientos\n")
	b.WriteString("/fijo — Programar un movimiento fijo\n")
	b.WriteString("/fijos — Ver movimientos fijos\n")
	b.WriteString("/borrar — Eliminar último registro\n")
	b.WriteString("/help — Ayuda")

	return b.String()
}

func renderHelp() string {
	var b strings.Builder

	b.WriteString("📖 *Guía de GastosBot*\n\n")
	b.WriteString("⚡ *Registro Rápido:*\n")
	b.WriteString("Escribe solo el monto y te pido la categoría:\n")
	b.WriteString("  `150` → selecciona categoría → listo\n")
	b.WriteString("  `85 almuerzo` → con descripción\n\n")
	b.WriteString("📋 *Comandos:*\n")
	b.WriteString("/gasto — Registro paso a paso\n")
	b.WriteString("/ingreso — Registrar ingreso\n")
	b.WriteString("/resumen — Resumen mensual con gráficas\n")
	b.WriteString("/hoy — Gastos del día\n")
	b.WriteString("/recientes — Últimos 10 movimientos\n")
	b.WriteString("/fijo — Programar un movimiento fijo\n")
	b.WriteString("/fijos — Ver y eliminar movimientos fijos\n")
	b.WriteString("/borrar — Eliminar último registro\n\n")
	b.WriteString("💡 *Tips:*\n")
	b.WriteString("• Los métodos de pago incluyen Yape, BCP, Plin\n")
	b.WriteString("• Puedes adjuntar una foto del recibo\n")
	b.WriteString("• El bot solo responde a usuarios autorizados\n")
	b.WriteString("• Los datos se guardan en tu propio servidor")

	return b.String()
}

func renderGuidedIntro(kind model.TransactionKind) string {
	if kind == model.KindIncome {
		return "💰 *Registrar Ingreso*\n\nSelecciona la categoría:"
	}
	return "💸 *Registrar Gasto*\n\nSelecciona la categoría:"
}

func renderAskAmount(kind model.TransactionKind, category string) string {
	return fmt.Sprintf("%s *%s*\n\n💵 Escribe el monto:", kindEmoji(kind), category)
}

func renderAskPayment(v decimal.Decimal) string {
	return fmt.Sprintf("💵 Monto: *%s*\n\n💳 Método de pago:", amount(v))
}

// renderCommitted is the confirmation block for any committed entry.
// Expenses close with the running total for the day.
func renderCommitted(txn *model.Transaction, todayTotal decimal.Decimal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "✅ *%s registrado*\n\n", txn.Kind.Label())
	fmt.Fprintf(&b, "%s %s\n", kindEmoji(txn.Kind), txn.Category)
	fmt.Fprintf(&b, "💵 %s\n", amount(txn.Amount))
	fmt.Fprintf(&b, "💳 %s\n", txn.PaymentMethod)
	if txn.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", txn.Description)
	}
	if txn.HasPhoto() {
		b.WriteString("📸 Foto adjunta\n")
	}
	if txn.Kind == model.KindExpense {
		fmt.Fprintf(&b, "\n📊 Total hoy: %s", amount(todayTotal))
	}

	return b.String()
}

func renderQuickIntro(v decimal.Decimal, description string) string {
	text := fmt.Sprintf("⚡ *Gasto rápido: %s*", amount(v))
	if description != "" {
		text += "\n📝 " + description
	}
	return text + "\n\nSelecciona categoría:"
}

func renderQuickPayment(v decimal.Decimal, category string) string {
	return fmt.Sprintf("⚡ *%s* → %s\n\n💳 Método de pago:", amount(v), category)
}

func renderMonthSummary(summary service.MonthSummary, breakdown []service.CategoryTotal) string {
	var b strings.Builder

	b.WriteString("📊 *Resumen del Mes*\n")
	b.WriteString(divider + "\n\n")
	fmt.Fprintf(&b, "💰 Ingresos:  $%12s\n", money.Format(summary.Income))
	fmt.Fprintf(&b, "💸 Gastos:    $%12s\n", money.Format(summary.Expenses))
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "📊 Balance:   $%12s\n", money.Format(summary.Balance()))
	fmt.Fprintf(&b, "📈 Ahorro:    %.1f%%\n\n", summary.SavingsRate())

	if len(breakdown) > 0 {
		b.WriteString("*Gastos por categoría:*\n")
		largest := breakdown[0].Total
		for _, ct := range breakdown {
			fmt.Fprintf(&b, "`%s` %s\n  %s (%.0f%%)\n",
				bar(ct, largest), ct.Category, amount(ct.Total), ct.Percent(summary.Expenses))
		}
	}

	return b.String()
}

// bar renders an eight-block bar proportional to the largest total.
func bar(ct service.CategoryTotal, largest decimal.Decimal) string {
	filled := ct.BarLength(largest, barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func renderToday(txns []model.Transaction, total decimal.Decimal) string {
	var b strings.Builder

	b.WriteString("📅 *Gastos de Hoy*\n")
	b.WriteString(divider + "\n\n")

	if len(txns) == 0 {
		b.WriteString("🎉 ¡No has gastado nada hoy!")
		return b.String()
	}

	for _, txn := range txns {
		fmt.Fprintf(&b, "• %s → %s", txn.Category, amount(txn.Amount))
		if txn.Description != "" {
			b.WriteString(" — " + txn.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\n💸 *Total: %s*", divider, amount(total))

	return b.String()
}

func renderRecent(txns []model.Transaction) string {
	var b strings.Builder

	b.WriteString("🕐 *Últimos Movimientos*\n")
	b.WriteString(divider + "\n\n")

	if len(txns) == 0 {
		b.WriteString("No hay movimientos registrados.")
		return b.String()
	}

	for _, txn := range txns {
		fmt.Fprintf(&b, "%s `%s` %s\n", kindEmoji(txn.Kind), txn.CreatedAt.Format("02/01 15:04"), txn.Category)
		fmt.Fprintf(&b, "   %s (%s)", amount(txn.Amount), txn.PaymentMethod)
		if txn.Description != "" {
			b.WriteString(" — " + txn.Description)
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func renderDeleted(txn *model.Transaction) string {
	return fmt.Sprintf("🗑️ *Eliminado:* %s → %s", txn.Category, amount(txn.Amount))
}

func renderRuleIntro() string {
	return "🔁 *Nuevo Movimiento Fijo*\n\n¿Es un gasto o un ingreso?"
}

func renderRuleAskCategory() string {
	return "🔁 *Movimiento Fijo*\n\nSelecciona la categoría:"
}

func renderRuleAskAmount(kind model.TransactionKind, category string) string {
	return fmt.Sprintf("%s *%s*\n\n💵 Escribe el monto mensual:", kindEmoji(kind), category)
}

func renderRuleCreated(rule *model.RecurringRule) string {
	var b strings.Builder

	b.WriteString("✅ *Movimiento fijo creado*\n\n")
	fmt.Fprintf(&b, "🔁 %s\n", rule.Category)
	fmt.Fprintf(&b, "💵 %s\n", amount(rule.Amount))
	fmt.Fprintf(&b, "📆 Día %d de cada mes\n", rule.DayOfMonth)
	fmt.Fprintf(&b, "💳 %s\n", rule.PaymentMethod)
	if rule.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", rule.Description)
	}
	b.WriteString("\nSe registrará automáticamente cada mes.")

	return b.String()
}

func renderRules(rules []model.RecurringRule) string {
	var b strings.Builder

	b.WriteString("🔁 *Movimientos Fijos*\n")
	b.WriteString(divider + "\n\n")

	if len(rules) == 0 {
		b.WriteString("No tienes movimientos fijos.\nUsa /fijo para programar uno.")
		return b.String()
	}

	for _, rule := range rules {
		fmt.Fprintf(&b, "%s %s → %s\n", kindEmoji(rule.Kind), rule.Category, amount(rule.Amount))
		fmt.Fprintf(&b, "   📆 Día %d · 💳 %s", rule.DayOfMonth, rule.PaymentMethod)
		if rule.Description != "" {
			b.WriteString(" — " + rule.Description)
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Toca 🗑️ para eliminar un movimiento.")

	return b.String()
}

// renderApplied is the notification a user gets when their recurring
// rules post.
func renderApplied(txns []model.Transaction) string {
	var b strings.Builder

	b.WriteString("🔁 *Movimientos Fijos Registrados*\n\n")
	for i := range txns {
		txn := &txns[i]
		fmt.Fprintf(&b, "%s %s → %s\n", kindEmoji(txn.Kind), txn.Category, amount(txn.Amount))
	}

	return b.String()
}
