package entity

// All returns every entity for AutoMigrate (sqlite dev/test; MySQL uses the
// SQL migrations).
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Supplier{},
		&Station{},
		&Product{},
		&ProductStation{},
		&Material{},
		&Stock{},
		&StockMovement{},
		&ExternalService{},
		&BOMLine{},
		&Order{},
		&OrderStation{},
		&OrderMaterial{},
		&OrderService{},
		&OrderSequence{},
		&Alert{},
	}
}
