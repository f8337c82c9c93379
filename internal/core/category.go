package core

// Category is one of the fixed transaction categories offered by the
// create form.
type Category struct {
	ID   string
	Name string
	Icon string
}

// Categories is the fixed list offered by the create form, in display order.
var Categories = []Category{
	{ID: "food", Name: "Food", Icon: "restaurant"},
	{ID: "shopping", Name: "Shopping", Icon: "bag"},
	{ID: "transport", Name: "Transport", Icon: "car"},
	{ID: "health", Name: "Health", Icon: "heart"},
	{ID: "bills", Name: "Bills", Icon: "receipt"},
	{ID: "income", Name: "Income", Icon: "cash"},
	{ID: "entertainment", Name: "Entertainment", Icon: "game-controller"},
	{ID: "other", Name: "Other", Icon: "ellipsis-horizontal"},
}

// CategoryIcon returns the icon for a category id, or a generic tag icon
// for categories the client does not know.
func CategoryIcon(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Icon
		}
	}
	return "pricetag-outline"
}
