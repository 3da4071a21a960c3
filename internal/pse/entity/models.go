package entity

// Models lists the tables migrated at startup.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&Shipment{},
		&ShipmentItem{},
		&Memo{},
		&Notification{},
	}
}
