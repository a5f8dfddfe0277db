package models

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Podcast{},
		&Like{},
		&Rating{},
		&Comment{},
		&Follow{},
		&Notification{},
		&ListeningHistory{},
	}
}
