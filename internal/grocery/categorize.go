package grocery

import (
	"strings"
)

// Other is the category used when nothing matches.
const Other = "Other"

type rule struct {
	category string
	icon     string
	words    []string
}

// rules are checked in order, so more specific phrases belong in earlier
// categories ("ice cream" before "cream"). Category names are already in
// the stored title form: first letter upper, the rest lower.
var rules = []rule{
	{"Frozen", "🧊", []string{"ice cream", "frozen", "popsicle", "waffles", "ice"}},
	{"Baby", "👶", []string{"diaper", "wipes", "formula", "baby food", "pacifier"}},
	{"Pet", "🐾", []string{"dog food", "cat food", "cat litter", "litter", "pet", "treats", "kibble"}},
	{"Personal care", "🧴", []string{"shampoo", "conditioner", "toothpaste", "toothbrush", "deodorant", "floss", "razor", "lotion", "sunscreen", "body wash", "vitamins", "medicine", "bandages"}},
	{"Cleaning", "🧽", []string{"detergent", "bleach", "dish soap", "sponge", "cleaner", "disinfectant", "fabric softener"}},
	{"Household", "🏠", []string{"paper towels", "toilet paper", "tissues", "trash bags", "foil", "plastic wrap", "light bulbs", "batteries", "napkins", "candles"}},
	{"Beverages", "🥤", []string{"coffee", "tea", "juice", "soda", "water", "sparkling", "kombucha", "lemonade"}},
	{"Seafood", "🐟", []string{"salmon", "tuna steak", "shrimp", "cod", "tilapia", "crab", "lobster", "fish"}},
	{"Meat", "🥩", []string{"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak", "lamb", "ground"}},
	{"Dairy", "🥛", []string{"milk", "cheese", "cheddar", "yogurt", "butter", "cream", "eggs", "sour cream", "mozzarella"}},
	{"Bakery", "🍞", []string{"bread", "bagel", "muffin", "croissant", "tortilla", "bun", "rolls", "cake", "pita"}},
	{"Snacks", "🍿", []string{"chips", "crackers", "popcorn", "pretzels", "cookies", "granola bar", "nuts", "candy", "chocolate"}},
	{"Pantry", "🥫", []string{"rice", "pasta", "flour", "sugar", "salt", "oil", "vinegar", "cereal", "oats", "beans", "canned", "soup", "sauce", "peanut butter", "honey", "spice", "ketchup", "mustard", "tuna"}},
	{"Produce", "🥕", []string{"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato", "potato", "onion", "garlic", "lettuce", "spinach", "kale", "broccoli", "carrot", "celery", "cucumber", "pepper", "mushroom", "berries", "grapes", "pear", "fruit", "vegetable", "salad"}},
}

// Categorize suggests a category for an item name. Whole words are tried
// before substrings; names that match nothing get Other.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}

	padded := " " + strings.Join(strings.Fields(name), " ") + " "
	for _, r := range rules {
		for _, w := range r.words {
			if strings.Contains(padded, " "+w+" ") {
				return r.category
			}
		}
	}
	for _, r := range rules {
		for _, w := range r.words {
			if strings.Contains(name, w) {
				return r.category
			}
		}
	}
	return Other
}

// Icon returns the symbol shown next to a category, or a generic cart.
func Icon(category string) string {
	for _, r := range rules {
		if strings.EqualFold(r.category, strings.TrimSpace(category)) {
			return r.icon
		}
	}
	return "🛒"
}

// Categories lists the known categories in suggestion order.
func Categories() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, Other)
}
