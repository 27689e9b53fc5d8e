package models

// All lists every persisted model, in dependency order, for schema automigration.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Coupon{},
		&GiftCard{},
		&FeaturedDrop{},
		&Policy{},
		&WishlistItem{},
		&OutboxEvent{},
	}
}
