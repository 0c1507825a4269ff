package quiz

// Category is a masked word class.
type Category string

const (
	Adjective   Category = "adjective"
	ClosedClass Category = "closed_class"
	Noun        Category = "noun"
	Number      Category = "number"
	ProperNoun  Category = "proper_noun"
	Verb        Category = "verb"
)

// CategoryInfo binds a Category to its placeholder token, display color,
// legend label and source column.
type CategoryInfo struct {
	Category Category
	Token    string
	Color    string
	Label    string
	Field    string
}

// Categories is the static category table in declaration order.
// Guess evaluation walks it in this order; the first match wins.
var Categories = []CategoryInfo{
	{Adjective, "1111", "#FF6B6B", "Adjectives", "solution_adj"},
	{ClosedClass, "2222", "#4ECDC4", "Closed Class", "solution_closed_class"},
	{Noun, "3333", "#4CAF50", "Nouns", "solution_nouns"},
	{Number, "4444", "#FFE66D", "Numbers", "solution_numbers"},
	{ProperNoun, "5555", "#C7CEEA", "Proper Nouns", "solution_proper_nouns"},
	{Verb, "6666", "#FFA07A", "Verbs", "solution_verbs"},
}

// InfoFor returns the table row for c.
func InfoFor(c Category) (CategoryInfo, bool) {
	for _, ci := range Categories {
		if ci.Category == c {
			return ci, true
		}
	}
	return CategoryInfo{}, false
}

// InfoForToken returns the table row bound to a placeholder token.
func InfoForToken(tok string) (CategoryInfo, bool) {
	for _, ci := range Categories {
		if ci.Token == tok {
			return ci, true
		}
	}
	return CategoryInfo{}, false
}
