package services

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"budget-tracker/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type expenseGenerator struct {
	faker *gofakeit.Faker
}

// spendingProfile describes a family of categories the generator recognises by name
type spendingProfile struct {
	keywords []string
	min, max float64
	title    func(f *gofakeit.Faker) string
}

var spendingProfiles = []spendingProfile{
	{
		keywords: []string{"food", "dining", "restaurant", "grocer", "meal"},
		min:      5, max: 120,
		title: func(f *gofakeit.Faker) string {
			return f.RandomString([]string{f.Lunch(), f.Dinner(), f.Breakfast(), f.Snack()})
		},
	},
	{
		keywords: []string{"travel", "transport", "taxi", "fuel", "commute"},
		min:      10, max: 800,
		title: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("Trip to %s", f.City())
		},
	},
	{
		keywords: []string{"shop", "cloth", "electronic"},
		min:      15, max: 450,
		title: func(f *gofakeit.Faker) string {
			return f.ProductName()
		},
	},
	{
		keywords: []string{"bill", "utilit", "rent", "phone", "internet"},
		min:      40, max: 300,
		title: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("%s bill", f.Company())
		},
	},
	{
		keywords: []string{"entertain", "movie", "fun", "game", "subscription"},
		min:      8, max: 90,
		title: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("Tickets: %s", f.MovieName())
		},
	},
	{
		keywords: []string{"health", "medic", "pharma", "fitness"},
		min:      10, max: 250,
		title: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("%s pharmacy", f.LastName())
		},
	},
}

// NewExpenseGenerator creates a generator seeded from the clock
func NewExpenseGenerator() ExpenseGeneratorInterface {
	return &expenseGenerator{faker: gofakeit.New(0)}
}

// NewSeededExpenseGenerator creates a deterministic generator for tests
func NewSeededExpenseGenerator(seed uint64) ExpenseGeneratorInterface {
	return &expenseGenerator{faker: gofakeit.New(seed)}
}

// GenerateExpenses builds count expenses spread across categories and dated inside
// [start, end]. The result is sorted newest first, the order the ledger lists them in.
func (g *expenseGenerator) GenerateExpenses(userID uuid.UUID, categories []models.Category, start, end time.Time, count int) []models.Expense {
	if len(categories) == 0 || count <= 0 {
		return []models.Expense{}
	}

	expenses := make([]models.Expense, 0, count)
	for i := 0; i < count; i++ {
		category := categories[g.faker.IntRange(0, len(categories)-1)]

		expense := models.Expense{
			UserID:     userID,
			CategoryID: category.ID,
			Title:      g.GenerateTitle(category.Name),
			Amount:     g.GenerateAmount(category.Name),
			Date:       g.GenerateTimestamp(start, end),
		}
		if g.faker.IntRange(1, 4) == 1 {
			expense.Note = g.faker.Sentence(6)
		}

		expenses = append(expenses, expense)
	}

	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})

	return expenses
}

// GenerateAmount returns a positive amount with two decimals in the range typical for the category
func (g *expenseGenerator) GenerateAmount(categoryName string) decimal.Decimal {
	minValue, maxValue := 5.0, 100.0
	if profile := profileFor(categoryName); profile != nil {
		minValue, maxValue = profile.min, profile.max
	}

	amount := decimal.NewFromFloat(g.faker.Price(minValue, maxValue)).Round(2)
	if !amount.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return amount
}

// GenerateTitle returns a plausible expense title for the category
func (g *expenseGenerator) GenerateTitle(categoryName string) string {
	title := ""
	if profile := profileFor(categoryName); profile != nil {
		title = profile.title(g.faker)
	} else {
		title = fmt.Sprintf("%s %s", g.faker.Adjective(), g.faker.Noun())
	}

	title = truncateRunes(strings.TrimSpace(title), models.MaxExpenseTitleLength)
	if title == "" {
		title = "Purchase"
	}
	return title
}

// truncateRunes cuts s to at most n characters without splitting a multibyte rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// GenerateTimestamp returns a random instant in [start, end], in start's location
func (g *expenseGenerator) GenerateTimestamp(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}

	span := end.Sub(start)
	offset := time.Duration(g.faker.Int64()) % span
	if offset < 0 {
		offset = -offset
	}
	return start.Add(offset).Truncate(time.Second)
}

func profileFor(categoryName string) *spendingProfile {
	name := strings.ToLower(categoryName)
	for i := range spendingProfiles {
		for _, keyword := range spendingProfiles[i].keywords {
			if strings.Contains(name, keyword) {
				return &spendingProfiles[i]
			}
		}
	}
	return nil
}
