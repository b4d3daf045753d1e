package model

// Category is a per-user tag for grouping transactions of one kind.
// The (user, name, kind) tuple is unique. Catalogs are seeded with a fixed
// default set the first time a user interacts with the bot and are
// append-only afterwards.
type Category struct {
	Name   string
	Emoji  string
	Kind   TransactionKind
	ID     int64
	UserID int64
}

// Label returns the display form of the category, emoji first.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// DefaultEmoji marks categories created without one.
const DefaultEmoji = "📌"

// DefaultExpenseCategories is the catalog seeded for new users.
var DefaultExpenseCategories = []Category{
	{Name: "Vivienda", Emoji: "🏠", Kind: KindExpense},
	{Name: "Comida", Emoji: "🍽️", Kind: KindExpense},
	{Name: "Transporte", Emoji: "🚗", Kind: KindExpense},
	{Name: "Servicios", Emoji: "💡", Kind: KindExpense},
	{Name: "Salud", Emoji: "🏥", Kind: KindExpense},
	{Name: "Educación", Emoji: "📚", Kind: KindExpense},
	{Name: "Entretenimiento", Emoji: "🎮", Kind: KindExpense},
	{Name: "Ropa", Emoji: "👔", Kind: KindExpense},
	{Name: "Ahorro", Emoji: "💰", Kind: KindExpense},
	{Name: "Otros", Emoji: "🎁", Kind: KindExpense},
}

// DefaultIncomeCategories is the income catalog seeded for new users.
var DefaultIncomeCategories = []Category{
	{Name: "Salario", Emoji: "💼", Kind: KindIncome},
	{Name: "Freelance", Emoji: "💻", Kind: KindIncome},
	{Name: "Inversiones", Emoji: "📈", Kind: KindIncome},
	{Name: "Rentas", Emoji: "🏠", Kind: KindIncome},
	{Name: "Otros", Emoji: "🎁", Kind: KindIncome},
}
