package taxonomy

// Default word lists for grocery and snack listings. Fruits and other base
// products are not listed, so keywords group by how the product is made or
// sold. Label them through the taxonomy file to group by product instead.
var defaultWords = map[Category][]string{
	Ingredient: {
		"sugar", "salt", "honey", "cinnamon", "chocolate", "cocoa", "vanilla",
		"yogurt", "milk", "cream", "butter", "oat", "almond", "peanut", "coconut",
		"protein", "fiber", "caffeine", "collagen", "matcha", "ginger", "turmeric",
	},
	Processing: {
		"dried", "freeze", "frozen", "dehydrated", "powdered", "powder", "sliced",
		"slice", "diced", "chopped", "chip", "crisp", "roasted", "baked", "toasted",
		"candied", "crushed", "ground", "puree", "pureed", "smoked", "pickled",
	},
	Quality: {
		"organic", "natural", "gmo", "vegan", "kosher", "halal", "gluten", "keto",
		"paleo", "unsweetened", "pure", "premium", "healthy", "fresh", "raw",
	},
	Quantity: {
		"bulk", "pack", "count", "ounce", "oz", "lb", "pound", "gram", "kg",
		"bag", "box", "jar", "pouch", "case", "family", "size", "serving", "single",
	},
}

// Default returns a taxonomy seeded with the built-in word lists.
func Default() *Taxonomy {
	t := New()
	for _, c := range byPriority {
		if words, ok := defaultWords[c]; ok {
			_ = t.AddWords(c, words)
		}
	}
	return t
}
