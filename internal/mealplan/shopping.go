package mealplan

import (
	"sort"
	"strings"

	"github.com/pageza/alchemorsel-mealplanner/backend/internal/model"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/recommend"
	"golang.org/x/text/cases"
)

// ShoppingItem is one aggregated ingredient line.
type ShoppingItem struct {
	Name    string   `json:"name"`
	Amount  float64  `json:"amount"`
	Unit    string   `json:"unit"`
	Recipes []string `json:"recipes"`
}

// ShoppingList sums the ingredients of recipes by name and unit, ignoring
// case, and leaves out anything already in the pantry. Items are sorted by
// name then unit.
func ShoppingList(recipes []model.Recipe, pantry []string) []ShoppingItem {
	folder := cases.Fold()

	items := make([]string, 0, len(pantry))
	for _, p := range pantry {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			items = append(items, p)
		}
	}

	type key struct{ name, unit string }
	byKey := make(map[key]*ShoppingItem)
	var order []key

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing.DisplayName())
			if name == "" || recommend.InPantry(name, items) {
				continue
			}
			unit := strings.TrimSpace(ing.Unit)
			k := key{name: folder.String(name), unit: folder.String(unit)}

			item, ok := byKey[k]
			if !ok {
				item = &ShoppingItem{Name: name, Unit: unit, Recipes: []string{}}
				byKey[k] = item
				order = append(order, k)
			}
			if ing.Amount > 0 {
				item.Amount += ing.Amount
			}
			if n := len(item.Recipes); n == 0 || item.Recipes[n-1] != r.ID {
				item.Recipes = append(item.Recipes, r.ID)
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].name != order[j].name {
			return order[i].name < order[j].name
		}
		return order[i].unit < order[j].unit
	})

	out := make([]ShoppingItem, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}
